package charge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
	"github.com/seo-tools/site-atlas/pkg/models/store"
	"github.com/seo-tools/site-atlas/pkg/services/rawdata"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
	creditstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/credit"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
)

const defaultFetchTimeout = 30 * time.Second

// Service is the single parameterized paid-operation flow. Every paid
// source runs through ChargeAndFetch: validate the account, check the
// balance before any network call, fetch, then apply debit + raw merge
// + ledger append as one transaction.
type Service struct {
	db       *sql.DB
	credit   creditstore.Store
	raw      rawstore.Store
	registry sources.Registry
	timeout  time.Duration
}

type Settings struct {
	FetchTimeout time.Duration
}

func NewService(
	db *sql.DB,
	credit creditstore.Store,
	raw rawstore.Store,
	registry sources.Registry,
	settings Settings,
) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	timeout := settings.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Service{
		db:       db,
		credit:   credit,
		raw:      raw,
		registry: registry,
		timeout:  timeout,
	}, nil
}

// ChargeAndFetch runs one paid fetch for a site. On success the
// account is debited by exactly the operation's cost; on any failure
// before or during the transaction, nothing is written and nothing is
// charged.
func (s *Service) ChargeAndFetch(ctx context.Context, accountID, siteID, source, region string) error {
	logger := zerolog.Ctx(ctx)

	if accountID == "" {
		return &domain.ValidationError{Field: "accountId", Reason: "must not be empty"}
	}
	if siteID == "" {
		return &domain.ValidationError{Field: "siteId", Reason: "must not be empty"}
	}

	op, ok := sources.Lookup(source)
	if !ok {
		return &domain.ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", source)}
	}
	if op.RegionScoped && region == "" {
		return &domain.ValidationError{Field: "region", Reason: fmt.Sprintf("source %q requires a region", source)}
	}

	record, found, err := s.credit.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if !found {
		return &domain.ValidationError{Field: "accountId", Reason: fmt.Sprintf("account %q does not exist", accountID)}
	}

	account := domain.CreditAccount{ID: record.ID, Role: domain.Role(record.Role), Balance: record.Balance}
	if !account.Role.CanSpend() {
		return &domain.AuthorizationError{AccountID: accountID, Reason: fmt.Sprintf("role %q may not spend credit", account.Role)}
	}

	// The balance check happens before the adapter call so a slow or
	// failed fetch can never strand a debited-but-unfulfilled charge.
	if account.Balance < op.Cost {
		return &domain.AuthorizationError{
			AccountID: accountID,
			Reason:    fmt.Sprintf("balance %d below cost %d", account.Balance, op.Cost),
			Err:       domain.ErrInsufficientBalance,
		}
	}

	adapter, err := s.registry.Get(source)
	if err != nil {
		return &domain.ValidationError{Field: "source", Reason: err.Error()}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := adapter.Fetch(fetchCtx, siteID, region)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return err
		}
		return &domain.UpstreamError{Source: source, Err: err}
	}
	if payload == nil || len(payload.Data) == 0 {
		return &domain.UpstreamError{Source: source, Err: fmt.Errorf("adapter returned no usable payload")}
	}

	if err := s.commit(ctx, account, siteID, op, payload); err != nil {
		return err
	}

	logger.Info().
		Str("account", accountID).
		Str("site", siteID).
		Str("source", source).
		Str("region", payload.Region).
		Int("cost", op.Cost).
		Msg("paid fetch committed")
	return nil
}

// commit applies debit + raw-data write + ledger append atomically.
func (s *Service) commit(
	ctx context.Context,
	account domain.CreditAccount,
	siteID string,
	op sources.PaidOperation,
	payload *sources.RawPayload,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txCtx := duckdb.WithTransaction(ctx, tx)

	err = func() error {
		blob, _, err := s.raw.Get(txCtx, siteID)
		if err != nil {
			return err
		}

		merged, err := rawdata.Merge(txCtx, blob, payload.Region, payload.Source, payload.Data, payload.FetchedAt,
			rawdata.Options{RegionIndependent: sources.RegionIndependent})
		if err != nil {
			return err
		}

		if err := s.raw.Put(txCtx, siteID, merged, payload.FetchedAt); err != nil {
			return err
		}

		if err := s.credit.Debit(txCtx, account.ID, op.Cost); err != nil {
			if errors.Is(err, creditstore.ErrBalanceConflict) {
				return &domain.AuthorizationError{
					AccountID: account.ID,
					Reason:    "balance changed below cost during charge",
					Err:       domain.ErrInsufficientBalance,
				}
			}
			return err
		}

		return s.credit.Append(txCtx, store.LedgerEntry{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Amount:      -op.Cost,
			Type:        domain.LedgerTypeFetch,
			Description: fmt.Sprintf("%s fetch for %s (%s)", op.Name, siteID, payload.Region),
			CreatedAt:   payload.FetchedAt,
		})
	}()

	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zerolog.Ctx(ctx).Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
