// Command createsuperuser creates an active admin and staff account with a profile.
//
// Usage:
//
//	createsuperuser -email admin@example.com [-password ...] [-first-name ...] [-last-name ...] [-phone ...]
//
// When -password is omitted it is read from SUPERUSER_PASSWORD. Only the
// database settings (DATABASE_URL or DB_*) are required in the environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"user_auth/internal/config"
	"user_auth/internal/logging"
	"user_auth/internal/model"
	"user_auth/internal/repository"
	"user_auth/internal/service"
	"user_auth/internal/validator"

	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	in, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadTool()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbPool, err := config.ConnectDB(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	if err := config.Migrate(ctx, dbPool, logger); err != nil {
		return err
	}

	store := repository.NewStore(dbPool)
	v := validator.New(service.NewLookup(store), validator.Options{Region: cfg.PhoneDefaultRegion})
	superusers := service.NewSuperuserService(store, v, logger)

	user, err := superusers.CreateSuperuser(ctx, in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return formatErrors(verr.Fields)
		}
		return err
	}

	logger.Info("superuser created successfully", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func parseFlags(args []string) (*model.SuperuserInput, error) {
	in := &model.SuperuserInput{}
	var phone string

	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.StringVar(&in.Email, "email", "", "email address (required)")
	fs.StringVar(&in.Password, "password", "", "password, defaults to $SUPERUSER_PASSWORD")
	fs.StringVar(&in.FirstName, "first-name", "", "first name")
	fs.StringVar(&in.LastName, "last-name", "", "last name")
	fs.StringVar(&phone, "phone", "", "profile phone number")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if in.Password == "" {
		in.Password = os.Getenv("SUPERUSER_PASSWORD")
	}
	if phone != "" {
		in.PhoneNumber = &phone
	}
	return in, nil
}

func formatErrors(errs validator.Errors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msg := "superuser not created:"
	for _, field := range fields {
		for _, fe := range errs[field] {
			msg += fmt.Sprintf("\n  %s: %s", field, fe.Message)
		}
	}
	return errors.New(msg)
}
