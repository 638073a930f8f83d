package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"apotek/database"
	"apotek/model"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrNameRequired     = errors.New("supplier name is required")
	ErrInvalidEmail     = errors.New("supplier email is not valid")
	ErrSupplierNotFound = errors.New("supplier not found")
)

var validate = validator.New()

// Input is what an operator enters for a new supplier.
type Input struct {
	Name    string `json:"name"`
	Phone   string `json:"phone" validate:"max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=256"`
}

type Service struct {
	db  *sqlx.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(db *sqlx.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:  db,
		log: log.Named("supplier"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Register(ctx context.Context, in Input) (*model.Supplier, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Email" {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}

	sup := &model.Supplier{
		Name:      in.Name,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     in.Email,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: s.now(),
	}
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		id, err := database.NextSequenceInTx(ctx, tx, database.SupplierSequence)
		if err != nil {
			return err
		}
		sup.ID = id
		return database.InsertSupplierInTx(ctx, tx, sup)
	})
	if err != nil {
		return nil, fmt.Errorf("register supplier: %w", err)
	}
	s.log.Info("supplier registered", zap.String("id", sup.ID), zap.String("name", sup.Name))
	return sup, nil
}

func (s *Service) List(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := database.GetAllSuppliers(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if suppliers == nil {
		suppliers = []model.Supplier{}
	}
	return suppliers, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Supplier, error) {
	sup, err := database.GetSupplierByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, ErrSupplierNotFound
	}
	return sup, nil
}
