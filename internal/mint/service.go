package mint

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/chain"
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
	"github.com/google/uuid"
)

const (
	defaultPollInterval = 5 * time.Second
	persistTimeout      = 5 * time.Second
	mirrorTimeout       = 2 * time.Minute
)

// Config holds workflow settings
type Config struct {
	PollInterval time.Duration
	ExplorerURL  string
	ShareURL     string
}

// Dependencies are the collaborators a Service drives. Mirror and Archiver
// are optional.
type Dependencies struct {
	Store     SessionStore
	Timeline  TimelineStore
	Latch     Latch
	Publisher Publisher
	Pipeline  Pipeline
	Preparer  CallPreparer
	Writer    ContractWriter
	Intake    Intake
	Mirror    Mirror
	Archiver  Archiver
	Logger    Logger
}

// tracked is the in-process owner of one session. mu serialises every read
// and write of session; only the goroutine that moved the session into a
// busy state makes the external call for it.
type tracked struct {
	mu       sync.Mutex
	session  *Session
	fetching bool
	closed   bool
	poller   *Poller
	cancel   context.CancelFunc
	// resumed is set for an updating session picked up after a restart
	// until its first poll
	resumed bool
}

// Service owns mint sessions and drives them through the workflow
type Service struct {
	config Config
	deps   Dependencies
	now    func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*tracked
	closed   bool

	drainMu  sync.Mutex
	draining bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new mint service
func NewService(config Config, deps Dependencies) *Service {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.ShareURL == "" {
		config.ShareURL = DefaultShareURL
	}
	if deps.Publisher == nil {
		deps.Publisher = NoopPublisher{}
	}
	if deps.Timeline == nil {
		deps.Timeline = NewMemoryTimeline()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config:   config,
		deps:     deps,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*tracked),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ViewConfig returns the link settings views are rendered with
func (s *Service) ViewConfig() ViewConfig {
	return ViewConfig{ExplorerURL: s.config.ExplorerURL, ShareURL: s.config.ShareURL}
}

// Open starts an idle session for wallet
func (s *Service) Open(ctx context.Context, wallet string) (*View, error) {
	if wallet == "" {
		return nil, ErrWalletRequired
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	session := NewSession(wallet, s.now())
	t := &tracked{session: session}
	s.sessions[session.ID] = t
	s.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	s.persistLocked(ctx, t, "", StateIdle)

	s.logger(session).LogInfo("Opened mint session", map[string]interface{}{
		"wallet": wallet,
	})
	return BuildView(session, false, s.ViewConfig()), nil
}

// Get renders a session owned by wallet
func (s *Service) Get(ctx context.Context, id uuid.UUID, wallet string) (*View, error) {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Session returns a copy of the session record owned by wallet
func (s *Service) Session(ctx context.Context, id uuid.UUID, wallet string) (*Session, error) {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := *t.session
	return &copied, nil
}

// Timeline lists the recorded transitions of a session owned by wallet
func (s *Service) Timeline(ctx context.Context, id uuid.UUID, wallet string) ([]Transition, error) {
	if _, err := s.load(ctx, id, wallet); err != nil {
		return nil, err
	}
	return s.deps.Timeline.List(ctx, id.String())
}

// SelectFile attaches the dropped file. Rejected drops leave the session
// untouched; a file can only be chosen before creation starts.
func (s *Service) SelectFile(ctx context.Context, id uuid.UUID, wallet string, files []*multipart.FileHeader) (*View, error) {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.session.State != StateIdle {
		t.mu.Unlock()
		return nil, ErrInvalidState
	}
	log := s.logger(t.session)
	t.mu.Unlock()

	// The copy to disk and the archive upload run unlocked; the state is
	// checked again before the file is attached.
	file, err := s.deps.Intake.Accept(id.String(), files)
	if err != nil {
		return nil, err
	}

	var archiveURL string
	if s.deps.Archiver != nil {
		key := fmt.Sprintf("%s/%s", id, file.Name)
		archiveURL, err = s.deps.Archiver.Archive(ctx, key, file.Path, file.ContentType)
		if err != nil {
			log.LogWarn("Failed to archive source upload", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	session := t.session
	if t.closed || session.State != StateIdle {
		s.discard(log, file.Dir)
		if t.closed {
			return nil, ErrSessionNotFound
		}
		return nil, ErrInvalidState
	}

	if session.HasFile() {
		s.discard(log, filepath.Dir(session.FilePath))
	}

	session.FileName = file.Name
	session.FilePath = file.Path
	session.FileSize = file.Size
	session.ContentType = file.ContentType
	session.FileSelected = true
	session.ArchiveURL = archiveURL

	s.saveLocked(ctx, t)
	return BuildView(session, t.fetching, s.ViewConfig()), nil
}

func (s *Service) discard(log Logger, dir string) {
	if err := s.deps.Intake.Discard(dir); err != nil {
		log.LogWarn("Failed to discard upload", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
	}
}

// SetDetails sets the asset name and description before creation starts
func (s *Service) SetDetails(ctx context.Context, id uuid.UUID, wallet, name, description string) (*View, error) {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Intake.ValidateDetails(name, description); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.State != StateIdle {
		return nil, ErrInvalidState
	}

	t.session.Name = strings.TrimSpace(name)
	t.session.Description = description
	s.saveLocked(ctx, t)
	return BuildView(t.session, t.fetching, s.ViewConfig()), nil
}

// Create starts the upload. It is accepted once per session, from idle,
// with a file and a name present.
func (s *Service) Create(ctx context.Context, id uuid.UUID, wallet string) (*View, error) {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return nil, err
	}

	// Shutdown waits on wg only after it sets closed under s.mu
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()
	started := false
	defer func() {
		if !started {
			s.wg.Done()
		}
	}()

	t.mu.Lock()
	defer t.mu.Unlock()
	session := t.session
	switch {
	case session.State != StateIdle:
		return nil, ErrInvalidState
	case !session.HasFile():
		return nil, ErrFileRequired
	case session.Name == "":
		return nil, ErrNameRequired
	}

	session.Progress = Progress{Phase: ProgressWaiting}
	if err := s.transitionLocked(ctx, t, StateCreating); err != nil {
		return nil, err
	}

	uploadCtx, cancel := context.WithCancel(s.ctx)
	t.cancel = cancel
	started = true
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runCreation(uploadCtx, t)
		s.untrackIfTerminal(t)
	}()

	return BuildView(session, t.fetching, s.ViewConfig()), nil
}

// Close tears a session down: polling stops, stored files are removed and
// the record is deleted. In-flight uploads are cancelled.
func (s *Service) Close(ctx context.Context, id uuid.UUID, wallet string) error {
	t, err := s.load(ctx, id, wallet)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	t.mu.Lock()
	t.closed = true
	poller, cancel := t.poller, t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if poller != nil {
		poller.Stop()
	}

	if err := s.deps.Intake.Release(id.String()); err != nil {
		s.deps.Logger.WithSessionID(id.String()).LogWarn("Failed to release uploads", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := s.deps.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.deps.Logger.WithSessionID(id.String()).LogInfo("Closed mint session", nil)
	return nil
}

// Resume picks up sessions persisted by a previous process. Sessions waiting
// on the pipeline are polled again. Interrupted uploads and contract writes
// fail closed, as does an updating session whose export request never
// reached the pipeline.
func (s *Service) Resume(ctx context.Context) (int, error) {
	sessions, err := s.deps.Store.ListByStates(ctx,
		StateCreating, StateCreated, StateUpdating, StateStored, StateWriting)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions to resume: %w", err)
	}

	resumed := 0
	for _, session := range sessions {
		t := &tracked{session: session}

		s.mu.Lock()
		if _, exists := s.sessions[session.ID]; exists || s.closed {
			s.mu.Unlock()
			continue
		}
		s.sessions[session.ID] = t
		s.mu.Unlock()

		t.mu.Lock()
		var interrupted bool
		switch session.State {
		case StateCreating:
			session.Progress = Progress{Phase: ProgressFailed}
			s.failLocked(ctx, t, apperrors.StageCreation, errors.New("upload interrupted by restart"))
			interrupted = true
		case StateStored, StateWriting:
			err := errors.New("contract write interrupted by restart")
			session.Call.Error = err.Error()
			s.failLocked(ctx, t, apperrors.StageWrite, err)
			interrupted = true
		default:
			t.resumed = session.State == StateUpdating
			s.startPollerLocked(t)
		}
		t.mu.Unlock()

		if interrupted {
			s.untrack(t)
			continue
		}
		resumed++
	}

	s.deps.Logger.LogInfo("Resumed mint sessions", map[string]interface{}{
		"count": resumed,
	})
	return resumed, nil
}

// Shutdown stops every poller and waits for in-flight uploads to return
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pollers := make([]*Poller, 0, len(s.sessions))
	for _, t := range s.sessions {
		t.mu.Lock()
		if t.poller != nil {
			pollers = append(pollers, t.poller)
		}
		t.mu.Unlock()
	}
	s.mu.Unlock()

	s.drainMu.Lock()
	s.draining = true
	s.drainMu.Unlock()

	s.cancel()
	for _, p := range pollers {
		p.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) load(ctx context.Context, id uuid.UUID, wallet string) (*tracked, error) {
	if wallet == "" {
		return nil, ErrWalletRequired
	}

	s.mu.Lock()
	t, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		session, err := s.deps.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if existing, exists := s.sessions[id]; exists {
			t = existing
		} else {
			t = &tracked{session: session}
			// terminal sessions are served from the store and never tracked
			if !session.State.Terminal() {
				s.sessions[id] = t
			}
		}
		s.mu.Unlock()
	}

	t.mu.Lock()
	owner := t.session.WalletAddress
	t.mu.Unlock()
	if !strings.EqualFold(owner, wallet) {
		return nil, ErrSessionNotFound
	}
	return t, nil
}

func (s *Service) view(t *tracked) *View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return BuildView(t.session, t.fetching, s.ViewConfig())
}

// untrack drops t from the session table once nothing in this process
// drives it any more. load rehydrates it from the store.
func (s *Service) untrack(t *tracked) {
	t.mu.Lock()
	id := t.session.ID
	t.mu.Unlock()

	s.mu.Lock()
	if s.sessions[id] == t {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}

func (s *Service) untrackIfTerminal(t *tracked) {
	t.mu.Lock()
	terminal := t.session.State.Terminal()
	t.mu.Unlock()
	if terminal {
		s.untrack(t)
	}
}

// runCreation uploads the file and hands the asset to the poller
func (s *Service) runCreation(ctx context.Context, t *tracked) {
	t.mu.Lock()
	session := t.session
	name, path, size := session.Name, session.FilePath, session.FileSize
	log := s.logger(session)
	t.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		t.mu.Lock()
		session.Progress = Progress{Phase: ProgressFailed}
		s.failLocked(ctx, t, apperrors.StageCreation, fmt.Errorf("failed to open upload: %w", err))
		t.mu.Unlock()
		return
	}
	defer file.Close()

	asset, err := s.deps.Pipeline.CreateAsset(ctx, name, file, size, func(fraction float64) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if session.State == StateCreating {
			session.Progress = Progress{Phase: ProgressUploading, Percent: percent(fraction)}
		}
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = nil
	if t.closed {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			log.LogWarn("Upload cancelled", nil)
			return
		}
		session.Progress = Progress{Phase: ProgressFailed}
		s.failLocked(ctx, t, apperrors.StageCreation, err)
		return
	}

	session.AssetID = asset.ID
	session.AssetPhase = asset.Status.Phase
	session.Progress = Progress{Phase: ProgressProcessing}
	if err := s.transitionLocked(ctx, t, StateCreated); err != nil {
		log.LogError(err, "Failed to record created asset")
		return
	}

	log.LogInfo("Asset created", map[string]interface{}{
		"asset_id": asset.ID,
	})
	s.startPollerLocked(t)
}

func (s *Service) startPollerLocked(t *tracked) {
	if t.poller != nil || t.closed || s.ctx.Err() != nil {
		return
	}
	t.poller = NewPoller(s.config.PollInterval, func(ctx context.Context) bool {
		if !s.refresh(ctx, t) {
			return false
		}
		s.untrack(t)
		return true
	})
	t.poller.Start(s.ctx)
}

// refresh is one poll tick. It returns true once polling must stop.
func (s *Service) refresh(ctx context.Context, t *tracked) bool {
	t.mu.Lock()
	session := t.session
	if session.State != StateCreated && session.State != StateUpdating {
		t.mu.Unlock()
		return true
	}
	assetID := session.AssetID
	t.fetching = true
	t.mu.Unlock()

	asset, err := s.deps.Pipeline.GetAsset(ctx, assetID)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetching = false

	if ctx.Err() != nil || t.closed {
		return true
	}
	if err != nil {
		s.failLocked(ctx, t, apperrors.StageFetch, err)
		return true
	}

	s.applyAssetLocked(session, asset)

	resumed := t.resumed
	t.resumed = false

	switch {
	case resumed && session.State == StateUpdating && asset.StoragePhase() == "":
		s.failLocked(ctx, t, apperrors.StageUpdate, errors.New("storage request interrupted by restart"))
		return true

	case asset.Status.Phase == livepeer.PhaseFailed:
		session.Progress = Progress{Phase: ProgressFailed}
		message := asset.Status.ErrorMessage
		if message == "" {
			message = apperrors.ErrMsgProcessingFailed
		}
		s.failLocked(ctx, t, apperrors.StageCreation, errors.New(message))
		return true

	case asset.Ready() && session.State == StateCreated:
		return s.requestStorageLocked(ctx, t)

	case session.State == StateUpdating && asset.StoragePhase() == livepeer.PhaseFailed:
		message := "IPFS export failed"
		if asset.Storage.Status.ErrorMessage != "" {
			message = asset.Storage.Status.ErrorMessage
		}
		s.failLocked(ctx, t, apperrors.StageUpdate, errors.New(message))
		return true

	case session.State == StateUpdating && asset.StoragePhase() == livepeer.PhaseReady:
		s.writeContractLocked(ctx, t)
		return true
	}

	s.saveLocked(ctx, t)
	return false
}

func (s *Service) applyAssetLocked(session *Session, asset *livepeer.Asset) {
	session.AssetPhase = asset.Status.Phase
	switch asset.Status.Phase {
	case livepeer.PhaseWaiting:
		session.Progress = Progress{Phase: ProgressWaiting}
	case livepeer.PhaseProcessing, livepeer.PhaseUploading:
		session.Progress = Progress{Phase: ProgressProcessing, Percent: percent(asset.Status.Progress)}
	case livepeer.PhaseReady:
		session.Progress = Progress{Phase: ProgressProcessing, Percent: 100}
	}

	if asset.Storage == nil {
		return
	}
	if asset.Storage.Status != nil {
		session.Storage.Phase = asset.Storage.Status.Phase
	}
	if ipfs := asset.Storage.IPFS; ipfs != nil {
		session.Storage.CID = ipfs.CID
		session.Storage.URL = ipfs.URL
		session.Storage.GatewayURL = ipfs.GatewayURL
		if ipfs.NFTMetadata != nil {
			session.Storage.MetadataURL = ipfs.NFTMetadata.URL
			session.Storage.MetadataGatewayURL = ipfs.NFTMetadata.GatewayURL
		}
	}
}

// requestStorageLocked moves created -> updating and asks the pipeline to
// export the asset. It returns true when polling must stop.
func (s *Service) requestStorageLocked(ctx context.Context, t *tracked) bool {
	session := t.session
	log := s.logger(session)

	session.StorageRequested = true
	session.FileSelected = false
	if err := s.transitionLocked(ctx, t, StateUpdating); err != nil {
		log.LogError(err, "Refused storage update")
		return true
	}

	acquired, err := s.deps.Latch.Acquire(ctx, "update:"+session.AssetID)
	if err != nil {
		s.failLocked(ctx, t, apperrors.StageUpdate, fmt.Errorf("failed to acquire update latch: %w", err))
		return true
	}
	if !acquired {
		log.LogWarn("Storage update already sent for asset", map[string]interface{}{
			"asset_id": session.AssetID,
		})
		return false
	}

	assetID := session.AssetID
	update := livepeer.NewIPFSUpdate(session.Name, session.Description)

	t.mu.Unlock()
	_, err = s.deps.Pipeline.UpdateAsset(ctx, assetID, update)
	t.mu.Lock()

	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		s.failLocked(ctx, t, apperrors.StageUpdate, err)
		return true
	}

	log.LogInfo("Requested IPFS export", map[string]interface{}{
		"asset_id": assetID,
	})
	return false
}

// writeContractLocked records the export, then prepares and submits the mint
func (s *Service) writeContractLocked(ctx context.Context, t *tracked) {
	session := t.session
	log := s.logger(session)

	if err := s.transitionLocked(ctx, t, StateStored); err != nil {
		log.LogError(err, "Refused storage record")
		return
	}
	s.mirror(session.Storage.CID)

	call, err := s.deps.Preparer.Prepare(session.WalletAddress, session.Storage.MetadataURL)
	if err != nil {
		session.Call.Error = err.Error()
		s.failLocked(ctx, t, apperrors.StageWrite, err)
		return
	}
	session.Call.Recipient = call.Recipient.Hex()
	session.Call.TokenURI = call.TokenURI

	if err := s.transitionLocked(ctx, t, StateWriting); err != nil {
		log.LogError(err, "Refused contract write")
		return
	}

	acquired, err := s.deps.Latch.Acquire(ctx, "write:"+session.AssetID+":"+session.Storage.CID)
	if err != nil {
		session.Call.Error = err.Error()
		s.failLocked(ctx, t, apperrors.StageWrite, fmt.Errorf("failed to acquire write latch: %w", err))
		return
	}
	if !acquired {
		log.LogWarn("Contract write already sent for storage record", map[string]interface{}{
			"cid": session.Storage.CID,
		})
		return
	}

	t.mu.Unlock()
	hash, err := s.deps.Writer.Write(ctx, call)
	t.mu.Lock()

	if ctx.Err() != nil && err != nil {
		return
	}
	if err != nil {
		session.Call.Error = err.Error()
		s.failLocked(ctx, t, apperrors.StageWrite, err)
		return
	}

	session.Call.TxHash = hash
	session.Call.Success = true
	if err := s.transitionLocked(ctx, t, StateMinted); err != nil {
		log.LogError(err, "Failed to record mint")
		return
	}
	log.LogInfo("Video NFT minted", map[string]interface{}{
		"tx_hash":   hash,
		"token_uri": call.TokenURI,
	})
}

// mirror pins cid on the local node in the background; failures only log
func (s *Service) mirror(cid string) {
	if s.deps.Mirror == nil || cid == "" {
		return
	}
	// callers hold t.mu, so the drain flag has its own lock
	s.drainMu.Lock()
	if s.draining {
		s.drainMu.Unlock()
		return
	}
	s.wg.Add(1)
	s.drainMu.Unlock()
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, mirrorTimeout)
		defer cancel()
		if err := s.deps.Mirror.Pin(ctx, cid); err != nil {
			s.deps.Logger.LogWarn("Failed to mirror exported asset", map[string]interface{}{
				"cid":   cid,
				"error": err.Error(),
			})
		}
	}()
}

// failLocked records stage and cause and moves the session to failed
func (s *Service) failLocked(ctx context.Context, t *tracked, stage Stage, cause error) {
	stageErr := apperrors.NewStageError(stage, cause)
	t.session.FailedStage = stage
	t.session.Error = stageErr.Error()
	if err := s.transitionLocked(ctx, t, StateFailed); err != nil {
		s.logger(t.session).LogError(err, "Failed to record failure")
		return
	}
	s.logger(t.session).LogErrorf(stageErr, "Mint session failed at %s", stage)
}

// transitionLocked applies one validated edge and records it
func (s *Service) transitionLocked(ctx context.Context, t *tracked, to State) error {
	from := t.session.State
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, from, to)
	}
	t.session.State = to
	s.persistLocked(ctx, t, from, to)
	return nil
}

// persistLocked saves the session, appends the timeline and publishes the
// change. Only the in-memory record is authoritative; write failures log.
func (s *Service) persistLocked(ctx context.Context, t *tracked, from, to State) {
	if t.closed {
		return
	}
	session := t.session
	now := s.now()
	s.saveLocked(ctx, t)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	transition := Transition{
		SessionID:     session.ID.String(),
		WalletAddress: session.WalletAddress,
		From:          from,
		To:            to,
		Message:       session.Error,
		At:            now,
	}
	if to == StateFailed {
		transition.Stage = session.FailedStage
	}
	if err := s.deps.Timeline.Append(pctx, transition); err != nil {
		s.logger(session).LogError(err, "Failed to append transition")
	}
	if err := s.deps.Publisher.Publish(pctx, newEvent(session, from, now)); err != nil {
		s.logger(session).LogError(err, "Failed to publish mint event")
	}
}

func (s *Service) saveLocked(ctx context.Context, t *tracked) {
	if t.closed {
		return
	}
	t.session.UpdatedAt = s.now()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.deps.Store.Save(pctx, t.session); err != nil {
		s.logger(t.session).LogError(err, "Failed to save session")
	}
}

func (s *Service) logger(session *Session) Logger {
	return s.deps.Logger.WithSessionID(session.ID.String())
}

func percent(fraction float64) int {
	p := int(math.Round(fraction * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

var (
	_ CallPreparer   = (*chain.Preparer)(nil)
	_ ContractWriter = (*chain.EthWriter)(nil)
)
