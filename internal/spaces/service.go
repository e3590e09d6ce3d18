package spaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/pkg/chain"
	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/metrics"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/payloads"
	"github.com/shopspring/decimal"
)

// Service covers the listing surface: creating tokenized spaces,
// browsing and searching them, and adjusting availability.
type Service interface {
	CreateSpace(ctx context.Context, input CreateSpaceInput) (*models.LogisticsSpace, error)
	GetSpace(ctx context.Context, id int64) (*models.LogisticsSpace, error)
	ListSpaces(ctx context.Context) ([]models.LogisticsSpace, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.LogisticsSpace, error)
	SearchSpaces(ctx context.Context, source, destination string) ([]models.LogisticsSpace, error)
	UpdateStatus(ctx context.Context, id int64, status enums.SpaceStatus) (*models.LogisticsSpace, error)
}

// CreateSpaceInput carries a new listing's attributes. TokenID is
// optional; when absent the chain client mints one.
type CreateSpaceInput struct {
	UserID        int64
	TokenID       string
	Source        string
	Destination   string
	Length        float64
	Width         float64
	Height        float64
	MaxWeight     float64
	VehicleType   string
	DepartureDate time.Time
	Price         decimal.Decimal
}

type service struct {
	dbClient *db.Client
	repo     Repository
	chain    chain.Client
	outbox   *outbox.Service
	metrics  *metrics.BookingMetrics
}

// ServiceParams bundles the dependencies required to build a spaces service.
type ServiceParams struct {
	DB      *db.Client
	Repo    Repository
	Chain   chain.Client
	Outbox  *outbox.Service
	Metrics *metrics.BookingMetrics
}

// NewService constructs a spaces service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("space repository is required")
	}
	if params.Chain == nil {
		return nil, fmt.Errorf("chain client is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		dbClient: params.DB,
		repo:     params.Repo,
		chain:    params.Chain,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) CreateSpace(ctx context.Context, input CreateSpaceInput) (*models.LogisticsSpace, error) {
	if err := validateCreateSpace(input); err != nil {
		return nil, err
	}

	tokenID := strings.TrimSpace(input.TokenID)
	if tokenID == "" {
		minted, err := s.chain.MintSpaceToken(ctx, chain.SpaceTokenInput{
			Source:        input.Source,
			Destination:   input.Destination,
			Length:        input.Length,
			Width:         input.Width,
			Height:        input.Height,
			MaxWeight:     input.MaxWeight,
			VehicleType:   input.VehicleType,
			DepartureDate: input.DepartureDate,
			PriceValue:    input.Price.String(),
		})
		if err != nil {
			return nil, err
		}
		tokenID = minted
	}

	space := &models.LogisticsSpace{
		UserID:        input.UserID,
		TokenID:       tokenID,
		Source:        strings.TrimSpace(input.Source),
		Destination:   strings.TrimSpace(input.Destination),
		Length:        input.Length,
		Width:         input.Width,
		Height:        input.Height,
		MaxWeight:     input.MaxWeight,
		VehicleType:   input.VehicleType,
		Status:        enums.SpaceStatusAvailable,
		DepartureDate: input.DepartureDate,
		Price:         input.Price,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.GetByTokenID(ctx, tokenID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "token id already minted")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup token")
		}

		if err := repo.Create(ctx, space); err != nil {
			if db.IsUniqueViolation(err, "ux_logistics_spaces_token_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "token id already minted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create space")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSpaceListed,
			AggregateType: enums.AggregateSpace,
			AggregateID:   space.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.UserRoleLogistics.String()},
			Version:       1,
			Data: payloads.SpaceListedEvent{
				SpaceID:     space.ID,
				TokenID:     space.TokenID,
				Source:      space.Source,
				Destination: space.Destination,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSpacesCreated()
	return space, nil
}

func (s *service) GetSpace(ctx context.Context, id int64) (*models.LogisticsSpace, error) {
	space, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space")
	}
	return space, nil
}

func (s *service) ListSpaces(ctx context.Context) ([]models.LogisticsSpace, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list spaces")
	}
	return rows, nil
}

func (s *service) ListByOwner(ctx context.Context, userID int64) ([]models.LogisticsSpace, error) {
	rows, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owner spaces")
	}
	return rows, nil
}

func (s *service) SearchSpaces(ctx context.Context, source, destination string) ([]models.LogisticsSpace, error) {
	rows, err := s.repo.Search(ctx, source, destination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search spaces")
	}
	return rows, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status enums.SpaceStatus) (*models.LogisticsSpace, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid space status %q", status))
	}

	var updated *models.LogisticsSpace
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		space, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space")
		}
		if space.Status == status {
			updated = space
			return nil
		}

		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update space status")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSpaceStatusChanged,
			AggregateType: enums.AggregateSpace,
			AggregateID:   space.ID,
			Version:       1,
			Data: payloads.SpaceStatusChangedEvent{
				SpaceID:    space.ID,
				FromStatus: space.Status,
				ToStatus:   status,
			},
		}); err != nil {
			return err
		}

		space.Status = status
		updated = space
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validateCreateSpace(input CreateSpaceInput) error {
	details := map[string]string{}
	if input.UserID <= 0 {
		details["user_id"] = "required"
	}
	if strings.TrimSpace(input.Source) == "" {
		details["source"] = "required"
	}
	if strings.TrimSpace(input.Destination) == "" {
		details["destination"] = "required"
	}
	if input.Length <= 0 {
		details["length"] = "must be positive"
	}
	if input.Width <= 0 {
		details["width"] = "must be positive"
	}
	if input.Height <= 0 {
		details["height"] = "must be positive"
	}
	if input.MaxWeight <= 0 {
		details["max_weight"] = "must be positive"
	}
	if strings.TrimSpace(input.VehicleType) == "" {
		details["vehicle_type"] = "required"
	}
	if input.DepartureDate.IsZero() {
		details["departure_date"] = "required"
	}
	if !input.Price.IsPositive() {
		details["price"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid space listing").WithDetails(details)
	}
	return nil
}
