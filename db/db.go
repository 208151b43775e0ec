package db

import (
	"fmt"
	"log"
	"os"

	"equiplend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Equipment{},
		&models.Loan{},
		&models.BlacklistEntry{},
		&models.Settings{},
		&models.WarningDismissal{},
		&models.SuspensionLog{},
	); err != nil {
		return err
	}

	// At most one open loan per equipment item.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_equipment
	  ON %s (equipment_id)
	  WHERE returned_at IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// At most one active blacklist entry per student.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_student
	  ON %s (student_id)
	  WHERE is_active;
	`, models.BlacklistTable, models.BlacklistTable)).Error; err != nil {
		return err
	}

	// Faster open-loan scans for overdue refresh and at-risk evaluation.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_student_dueat
	  ON %s (student_id, due_at)
	  WHERE returned_at IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// Singleton settings row.
	return db.FirstOrCreate(&models.Settings{}, models.Settings{ID: models.SettingsID}).Error
}
