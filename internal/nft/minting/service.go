package minting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/monitoring"
	"ms-nft-ticketing/internal/nft/metadata"
	"ms-nft-ticketing/internal/nft/storage"
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNotEligible        = errors.New("event does not have NFT minting enabled")
	ErrMintInProgress     = errors.New("a mint is already in progress for this attendance")
	ErrNoWallet           = errors.New("attendee has no wallet address on file")
)

// MintError wraps a pipeline failure with the stage that produced it.
// The attendance record is left in a durable failed state and the
// operation may be retried.
type MintError struct {
	Stage string
	Err   error
}

func (e *MintError) Error() string {
	return fmt.Sprintf("mint failed at %s: %v", e.Stage, e.Err)
}

func (e *MintError) Unwrap() error {
	return e.Err
}

type MintDBLayer interface {
	GetAttendanceByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SetPending(ctx context.Context, attendanceID string) error
	SetMinted(ctx context.Context, attendanceID, mintAddress, metadataURI, chain string, mintedAt time.Time) (int64, error)
	SetFailed(ctx context.Context, attendanceID string) error
	ListByStatus(ctx context.Context, status string) ([]models.AttendanceRecord, error)
}

type MintLocker interface {
	Acquire(ctx context.Context, attendanceID, holderID string) (bool, error)
	Release(ctx context.Context, attendanceID, holderID string) error
	IsLocked(ctx context.Context, attendanceID string) (bool, error)
}

type ContentStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type Minter interface {
	Mint(ctx context.Context, metadataURI, chain, recipient, reference string) (*models.MintResult, error)
	LookupMint(ctx context.Context, reference string) (*models.MintResult, error)
}

type TicketRecorder interface {
	SetMintAddress(ctx context.Context, ticketID, mintAddress string) (int64, error)
}

type ChangeFeed interface {
	PublishNFTMinted(record models.AttendanceRecord) error
}

type AttendanceEmitter interface {
	EmitAttendance(record models.AttendanceRecord)
}

// Service drives the three-stage mint pipeline: metadata upload, chain
// mint, record update. At most one mint per attendance record.
type Service struct {
	DB      MintDBLayer
	Lock    MintLocker
	Store   ContentStore
	Minter  Minter
	Tickets TicketRecorder
	Feed    ChangeFeed
	Emitter AttendanceEmitter
	Logger  *logger.Logger

	UploadTimeout time.Duration
	MintTimeout   time.Duration
}

func NewService(db MintDBLayer, lock MintLocker, store ContentStore, minter Minter, tickets TicketRecorder, feed ChangeFeed, emitter AttendanceEmitter, log *logger.Logger, uploadTimeout, mintTimeout time.Duration) *Service {
	if uploadTimeout <= 0 {
		uploadTimeout = 15 * time.Second
	}
	if mintTimeout <= 0 {
		mintTimeout = 30 * time.Second
	}
	return &Service{
		DB:            db,
		Lock:          lock,
		Store:         store,
		Minter:        minter,
		Tickets:       tickets,
		Feed:          feed,
		Emitter:       emitter,
		Logger:        log,
		UploadTimeout: uploadTimeout,
		MintTimeout:   mintTimeout,
	}
}

// MintForAttendance runs the mint pipeline for one attendance record.
// chain may be empty, in which case it is inferred from the attendee's
// wallet address format.
func (s *Service) MintForAttendance(ctx context.Context, attendanceID, chain string) (*models.MintResult, error) {
	start := time.Now()
	defer func() { monitoring.TrackMintDuration(time.Since(start)) }()

	record, err := s.DB.GetAttendanceByID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAttendanceNotFound, attendanceID)
	}

	event, err := s.DB.GetEvent(ctx, record.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s", ErrAttendanceNotFound, record.EventID)
	}
	if !event.NFTsEnabled {
		return nil, fmt.Errorf("%w: event %s", ErrNotEligible, event.ID)
	}

	// Short-circuit before taking the lock: a finished mint is final.
	if result := existingResult(record); result != nil {
		return result, nil
	}

	holderID := uuid.NewString()
	ok, err := s.Lock.Acquire(ctx, attendanceID, holderID)
	if err != nil {
		return nil, s.fail(ctx, record, "lock", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMintInProgress, attendanceID)
	}
	defer func() {
		if err := s.Lock.Release(context.Background(), attendanceID, holderID); err != nil {
			s.Logger.Warn("MINT", fmt.Sprintf("Failed to release mint lock for %s: %v", attendanceID, err))
		}
	}()

	// Re-read under the lock; a racing caller may have finished while we
	// were acquiring it.
	record, err = s.DB.GetAttendanceByID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAttendanceNotFound, attendanceID)
	}
	if result := existingResult(record); result != nil {
		return result, nil
	}

	// Failed records re-enter pending here; minted ones never do.
	if err := s.DB.SetPending(ctx, attendanceID); err != nil {
		return nil, s.fail(ctx, record, "pending", err)
	}

	attendee, err := s.DB.GetUser(ctx, record.AttendeeID)
	if err != nil {
		return nil, s.fail(ctx, record, "profile", err)
	}

	meta := metadata.Build(event, record, attendee.FullName)
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, s.fail(ctx, record, "metadata", err)
	}
	monitoring.TrackMintStage("metadata", "success")

	uri := s.uploadMetadata(ctx, attendanceID, metaBytes)

	if chain == "" {
		chain = DetectChain(attendee.WalletAddress)
	}
	if !ValidChain(chain) {
		if attendee.WalletAddress == "" {
			return nil, s.fail(ctx, record, "chain", ErrNoWallet)
		}
		return nil, s.fail(ctx, record, "chain", fmt.Errorf("could not determine chain for address %q", attendee.WalletAddress))
	}

	mintCtx, cancel := context.WithTimeout(ctx, s.MintTimeout)
	defer cancel()
	result, err := s.Minter.Mint(mintCtx, uri, chain, attendee.WalletAddress, attendanceID)
	if err != nil {
		monitoring.TrackMintStage("mint", "failed")
		return nil, s.fail(ctx, record, "mint", err)
	}
	monitoring.TrackMintStage("mint", "success")
	s.Logger.LogMint("MINT", attendanceID, fmt.Sprintf("Minted %s on %s (tx %s)", result.MintAddress, result.Chain, result.TxHash))

	// A crash between the mint call and this update leaves an orphaned
	// on-chain mint; ReconcileOrphans sweeps those up.
	mintedAt := time.Now()
	rows, err := s.DB.SetMinted(ctx, attendanceID, result.MintAddress, uri, result.Chain, mintedAt)
	if err != nil {
		return nil, s.fail(ctx, record, "persist", err)
	}
	if rows == 0 {
		// A racing writer got there first; honor the stored result.
		stored, err := s.DB.GetAttendanceByID(ctx, attendanceID)
		if err == nil {
			if existing := existingResult(stored); existing != nil {
				return existing, nil
			}
		}
	}

	if s.Tickets != nil {
		if _, err := s.Tickets.SetMintAddress(ctx, record.TicketID, result.MintAddress); err != nil {
			s.Logger.Warn("MINT", fmt.Sprintf("Failed to record mint address on ticket %s: %v", record.TicketID, err))
		}
	}

	record.NFTStatus = models.NFTStatusMinted
	record.NFTMintAddress = result.MintAddress
	record.NFTMetadataURI = uri
	record.NFTChain = result.Chain
	record.NFTMintedAt = &mintedAt

	if s.Feed != nil {
		if err := s.Feed.PublishNFTMinted(*record); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish nft.minted for %s: %v", attendanceID, err))
		}
	}
	if s.Emitter != nil {
		s.Emitter.EmitAttendance(*record)
	}

	return result, nil
}

// uploadMetadata tries the pin service and falls back to an inline data
// URI. Upload failure is deliberately not a hard failure so one storage
// dependency cannot block minting entirely.
func (s *Service) uploadMetadata(ctx context.Context, attendanceID string, metaBytes []byte) string {
	uploadCtx, cancel := context.WithTimeout(ctx, s.UploadTimeout)
	defer cancel()

	uri, err := s.Store.Upload(uploadCtx, metaBytes)
	if err != nil {
		monitoring.TrackMintStage("upload", "fallback")
		s.Logger.Warn("MINT", fmt.Sprintf("Metadata upload failed for %s, falling back to inline URI: %v", attendanceID, err))
		return storage.InlineURI(metaBytes)
	}
	monitoring.TrackMintStage("upload", "success")
	return uri
}

// fail records the durable failed state and wraps the error. Previously
// set nft_* fields are preserved.
func (s *Service) fail(ctx context.Context, record *models.AttendanceRecord, stage string, err error) error {
	if dbErr := s.DB.SetFailed(ctx, record.ID); dbErr != nil {
		s.Logger.Error("MINT", fmt.Sprintf("Failed to mark attendance %s as failed: %v", record.ID, dbErr))
	}
	s.Logger.Error("MINT", fmt.Sprintf("Pipeline failed for %s at %s: %v", record.ID, stage, err))

	record.NFTStatus = models.NFTStatusFailed
	if s.Emitter != nil {
		s.Emitter.EmitAttendance(*record)
	}
	return &MintError{Stage: stage, Err: err}
}

func existingResult(record *models.AttendanceRecord) *models.MintResult {
	if record.NFTStatus == models.NFTStatusMinted && record.NFTMintAddress != "" {
		chain := record.NFTChain
		if chain == "" {
			// Rows written before nft_chain existed.
			chain = DetectChain(record.NFTMintAddress)
		}
		return &models.MintResult{
			MintAddress: record.NFTMintAddress,
			Chain:       chain,
		}
	}
	return nil
}

// TriggerMint is the asynchronous entry point used by the check-in
// coordinator. Fire and forget: failures land in the failed state and
// are retriable through the API.
func (s *Service) TriggerMint(attendanceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.UploadTimeout+s.MintTimeout+10*time.Second)
		defer cancel()

		if _, err := s.MintForAttendance(ctx, attendanceID, ""); err != nil {
			s.Logger.Warn("MINT", fmt.Sprintf("Background mint for %s did not complete: %v", attendanceID, err))
		}
	}()
}

// ReconcileOrphans re-checks failed records against the mint capability.
// A crash between the chain mint and the local update leaves a minted
// token with a failed record; the lookup is idempotent so repeated
// sweeps are safe.
func (s *Service) ReconcileOrphans(ctx context.Context) (int, error) {
	failed, err := s.DB.ListByStatus(ctx, models.NFTStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("failed to list failed records: %w", err)
	}

	recovered := 0
	for _, record := range failed {
		// A held lock means a retry is mid-flight; it will settle the
		// record itself.
		if locked, err := s.Lock.IsLocked(ctx, record.ID); err != nil || locked {
			continue
		}

		result, err := s.Minter.LookupMint(ctx, record.ID)
		if err != nil {
			s.Logger.Warn("MINT", fmt.Sprintf("Reconcile lookup failed for %s: %v", record.ID, err))
			continue
		}
		if result == nil {
			continue
		}

		rows, err := s.DB.SetMinted(ctx, record.ID, result.MintAddress, record.NFTMetadataURI, result.Chain, time.Now())
		if err != nil {
			s.Logger.Error("MINT", fmt.Sprintf("Reconcile persist failed for %s: %v", record.ID, err))
			continue
		}
		if rows > 0 {
			recovered++
			s.Logger.LogMint("RECONCILE", record.ID, fmt.Sprintf("Recovered orphaned mint %s", result.MintAddress))
		}
	}
	return recovered, nil
}
