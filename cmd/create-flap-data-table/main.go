package main

import (
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/tharushika0418/Vescueye-Deploy/internal/config"
	"github.com/tharushika0418/Vescueye-Deploy/internal/database"
)

// 创建 flap_data 表（幂等，可重复执行）
const createTableSQL = `
CREATE TABLE IF NOT EXISTS flap_data (
    id          UUID PRIMARY KEY,
    patient_id  TEXT NOT NULL,
    image_url   TEXT NOT NULL,
    temperature DOUBLE PRECISION NOT NULL,
    timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_flap_data_patient_time
    ON flap_data (patient_id, timestamp DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(createTableSQL); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("flap_data table created successfully")
}
