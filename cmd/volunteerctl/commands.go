package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"volunteerhub/config"
	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/database"
	"volunteerhub/pkg/jwt"
	applogger "volunteerhub/pkg/logger"
)

var (
	rollbackSteps int
	adminName     string
	adminEmail    string
	adminPhone    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.close()

		sqlDB, err := env.db.DB()
		if err != nil {
			return err
		}
		return database.RunMigrations(sqlDB, env.logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if rollbackSteps <= 0 {
			return fmt.Errorf("--steps must be positive")
		}
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.close()

		sqlDB, err := env.db.DB()
		if err != nil {
			return err
		}
		return database.RollbackMigrations(sqlDB, rollbackSteps, env.logger)
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN account and print its temporary password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.close()

		result, err := env.svc.User.CreateUser(cmd.Context(), &dto.CreateUserRequest{
			Name:  adminName,
			Email: adminEmail,
			Phone: adminPhone,
			Role:  model.RoleAdmin,
		}, "")
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\ntemporary password: %s\n",
			result.User.Email, result.User.ID, result.TempPassword)
		return nil
	},
}

var completeShiftsCmd = &cobra.Command{
	Use:   "complete-shifts",
	Short: "Mark shifts that have ended as COMPLETED",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.close()

		n, err := env.svc.Shift.CompletePastShifts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed %d shift(s)\n", n)
		return nil
	},
}

// env what every command needs: config, logger, database and services
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	svc    *service.Service
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, logger)
	return &env{cfg: cfg, logger: logger, db: db, svc: svc}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = e.logger.Sync()
}
