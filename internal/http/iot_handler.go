package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/repository"
	"github.com/tharushika0418/Vescueye-Deploy/internal/store"
)

// IoTHandler 遥测数据查询接口
type IoTHandler struct {
	latest store.LatestStore
	repo   repository.FlapDataRepository
	logger *zap.Logger
}

// NewIoTHandler 创建遥测数据查询接口
func NewIoTHandler(latest store.LatestStore, repo repository.FlapDataRepository, logger *zap.Logger) *IoTHandler {
	return &IoTHandler{
		latest: latest,
		repo:   repo,
		logger: logger,
	}
}

// GetLatest 查询最新一条遥测数据
// 首条数据到达前 data 为 null；无法区分"还没有数据"与"摄取中断"，
// 后者通过 /health 暴露
func (h *IoTHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	data, err := h.latest.Get(r.Context())
	if err != nil {
		h.logger.Error("Failed to read latest-value cache", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("Server error"))
		return
	}

	if data == nil {
		writeJSON(w, http.StatusOK, Result{Success: true, Data: nil})
		return
	}

	writeJSON(w, http.StatusOK, OK(data))
}

// GetFlapData 查询指定患者的全部遥测记录
func (h *IoTHandler) GetFlapData(w http.ResponseWriter, r *http.Request, patientID string) {
	records, err := h.repo.FindByPatientID(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to query flap data",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("Server error"))
		return
	}

	if len(records) == 0 {
		writeJSON(w, http.StatusNotFound, Fail("No flap data found for this patient."))
		return
	}

	writeJSON(w, http.StatusOK, OK(records))
}
