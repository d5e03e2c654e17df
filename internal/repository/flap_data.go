package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
)

// FlapDataRepository 皮瓣遥测数据仓库接口
type FlapDataRepository interface {
	// Insert 插入一条遥测记录（insert-one 语义，无事务）
	Insert(ctx context.Context, data *domain.FlapData) error
	// FindByPatientID 查询指定患者的全部遥测记录（时间倒序）
	FindByPatientID(ctx context.Context, patientID string) ([]domain.FlapData, error)
}

// PostgresFlapDataRepository FlapDataRepository 的 PostgreSQL 实现
type PostgresFlapDataRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresFlapDataRepository 创建皮瓣遥测数据仓库
func NewPostgresFlapDataRepository(db *sql.DB, logger *zap.Logger) *PostgresFlapDataRepository {
	return &PostgresFlapDataRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ FlapDataRepository = (*PostgresFlapDataRepository)(nil)

// Insert 插入遥测记录，记录 ID 由服务端生成
// 没有去重键：broker 重复投递会产生重复记录（at-least-once 契约）
func (r *PostgresFlapDataRepository) Insert(ctx context.Context, data *domain.FlapData) error {
	if data.ID == "" {
		data.ID = uuid.New().String()
	}

	query := `
		INSERT INTO flap_data (id, patient_id, image_url, temperature, timestamp)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		data.ID,
		data.PatientID,
		data.ImageURL,
		data.Temperature,
		data.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert flap data: %w", err)
	}

	return nil
}

// FindByPatientID 查询指定患者的全部遥测记录
func (r *PostgresFlapDataRepository) FindByPatientID(ctx context.Context, patientID string) ([]domain.FlapData, error) {
	query := `
		SELECT id, patient_id, image_url, temperature, timestamp
		FROM flap_data
		WHERE patient_id = $1
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flap data: %w", err)
	}
	defer rows.Close()

	var results []domain.FlapData
	for rows.Next() {
		var d domain.FlapData
		if err := rows.Scan(&d.ID, &d.PatientID, &d.ImageURL, &d.Temperature, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan flap data row: %w", err)
		}
		results = append(results, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flap data rows: %w", err)
	}

	return results, nil
}
