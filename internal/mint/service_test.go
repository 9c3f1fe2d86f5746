package mint

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/intake"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// prepared opens a session with a selected clip and details set
func prepared(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)

	_, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t, upload{"clip.mp4", mp4Header}))
	require.NoError(t, err)
	_, err = env.service.SetDetails(ctx, id, testWallet, "demo", "my first video")
	require.NoError(t, err)
	return id
}

func sessionOf(t *testing.T, env *testEnv, id uuid.UUID) *Session {
	t.Helper()
	session, err := env.service.Session(context.Background(), id, testWallet)
	require.NoError(t, err)
	return session
}

func waitForState(t *testing.T, env *testEnv, id uuid.UUID, want State) *Session {
	t.Helper()
	require.Eventually(t, func() bool {
		return sessionOf(t, env, id).State == want
	}, waitFor, 5*time.Millisecond, "session never reached %s", want)
	return sessionOf(t, env, id)
}

func assertPollingStopped(t *testing.T, env *testEnv) {
	t.Helper()
	_, before, _ := env.pipeline.counts()
	time.Sleep(60 * time.Millisecond)
	_, after, _ := env.pipeline.counts()
	assert.Equal(t, before, after, "poller kept querying the asset")
}

func TestMintWorkflow(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{processingAsset(0.4), readyAsset()},
		after:  []*livepeer.Asset{exportingAsset(), exportedAsset()},
	})
	id := prepared(t, env)
	ctx := context.Background()

	view, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)
	assert.Equal(t, StateCreating, view.State)
	assert.True(t, view.Loading)
	assert.True(t, view.Intake.InputsDisabled)

	session := waitForState(t, env, id, StateMinted)

	creates, _, updates := env.pipeline.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, mp4Header, env.pipeline.uploaded)
	assert.Equal(t, "demo", env.pipeline.lastUpdate.Name)
	assert.Equal(t, "my first video", env.pipeline.lastUpdate.Storage.IPFS.Spec.NFTMetadata["description"])

	require.Equal(t, 1, env.writer.count())
	call := env.writer.calls[0]
	assert.Equal(t, common.HexToAddress(testWallet), call.Recipient)
	assert.Equal(t, testMetadataURL, call.TokenURI)

	assert.Equal(t, testAssetID, session.AssetID)
	assert.Equal(t, testCID, session.Storage.CID)
	assert.Equal(t, testTxHash, session.Call.TxHash)
	assert.True(t, session.Call.Success)
	assert.True(t, session.StorageRequested)
	assert.False(t, session.FileSelected)

	view, err = env.service.Get(ctx, id, testWallet)
	require.NoError(t, err)
	assert.False(t, view.Loading)
	assert.False(t, view.ShowDropzone)
	require.NotNil(t, view.Result)
	assert.Equal(t, testCID, view.Result.PlaybackID)
	assert.Equal(t, "https://mumbai.polygonscan.com/tx/"+testTxHash, view.Result.TxURL)
	assert.Equal(t, DefaultShareURL, view.Result.ShareURL)

	timeline, err := env.service.Timeline(ctx, id, testWallet)
	require.NoError(t, err)
	var states []State
	for _, transition := range timeline {
		states = append(states, transition.To)
		assert.Equal(t, testWallet, transition.WalletAddress)
	}
	assert.Equal(t, []State{
		StateIdle, StateCreating, StateCreated, StateUpdating,
		StateStored, StateWriting, StateMinted,
	}, states)

	types := env.publisher.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventSessionOpened, types[0])
	assert.Equal(t, EventMinted, types[len(types)-1])

	assert.Eventually(t, func() bool {
		pinned := env.mirror.pinned()
		return len(pinned) == 1 && pinned[0] == testCID
	}, waitFor, 5*time.Millisecond)

	assertPollingStopped(t, env)
}

func TestProgressTextFollowsWorkflow(t *testing.T) {
	pipeline := &fakePipeline{
		before:  []*livepeer.Asset{processingAsset(0.8)},
		after:   []*livepeer.Asset{exportingAsset()},
		release: make(chan struct{}),
		halfway: make(chan struct{}),
		proceed: make(chan struct{}),
	}
	env := newTestEnv(t, pipeline)
	id := prepared(t, env)
	ctx := context.Background()

	progressText := func() string {
		view, err := env.service.Get(ctx, id, testWallet)
		if err != nil || view.Intake == nil {
			return ""
		}
		return view.Intake.ProgressText
	}

	view, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)
	require.NotNil(t, view.Intake)
	assert.Equal(t, "Waiting", view.Intake.ProgressText)
	assert.Equal(t, "Waiting", progressText())

	close(pipeline.release)
	waitClosed(t, pipeline.halfway, "upload to reach 50%")
	assert.Equal(t, "Uploading: 50%", progressText())
	assert.Equal(t, StateCreating, sessionOf(t, env, id).State)

	close(pipeline.proceed)
	require.Eventually(t, func() bool {
		return progressText() == "Processing: 80%"
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, StateCreated, sessionOf(t, env, id).State)

	pipeline.script(readyAsset())
	waitForState(t, env, id, StateUpdating)

	view, err = env.service.Get(ctx, id, testWallet)
	require.NoError(t, err)
	require.NotNil(t, view.Intake)
	assert.Equal(t, "Processing: 100%", view.Intake.ProgressText)
	assert.True(t, view.Intake.StoringToIPFS)
	assert.Contains(t, view.Intake.Notices, TextStoringToIPFS)
}

func TestFinishedSessionsAreReleased(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{readyAsset()},
		after:  []*livepeer.Asset{exportedAsset()},
	})
	id := prepared(t, env)
	ctx := context.Background()
	assert.Equal(t, 1, env.trackedCount())

	_, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)
	waitForState(t, env, id, StateMinted)
	require.Eventually(t, func() bool {
		return env.trackedCount() == 0
	}, waitFor, 5*time.Millisecond)

	view, err := env.service.Get(ctx, id, testWallet)
	require.NoError(t, err)
	assert.Equal(t, StateMinted, view.State)
	assert.Zero(t, env.trackedCount())
}

func TestFailedUploadIsReleased(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{createErr: errors.New("upload rejected")})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)
	waitForState(t, env, id, StateFailed)
	require.Eventually(t, func() bool {
		return env.trackedCount() == 0
	}, waitFor, 5*time.Millisecond)
}

func TestCreateFailureFailsClosed(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{createErr: errors.New("upload rejected")})
	id := prepared(t, env)
	ctx := context.Background()

	_, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageCreation, session.FailedStage)
	assert.Equal(t, "upload rejected", session.Error)

	view, err := env.service.Get(ctx, id, testWallet)
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrMsgProcessingFailed, view.Intake.ProgressText)

	_, err = env.service.Create(ctx, id, testWallet)
	assert.ErrorIs(t, err, ErrInvalidState)
	creates, gets, _ := env.pipeline.counts()
	assert.Equal(t, 1, creates)
	assert.Zero(t, gets)
}

func TestFetchFailureStopsPolling(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{getErr: errors.New("asset not found")})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageFetch, session.FailedStage)
	assert.Equal(t, "asset not found", session.Error)

	assertPollingStopped(t, env)
	_, gets, _ := env.pipeline.counts()
	assert.Equal(t, 1, gets)
}

func TestAssetProcessingFailure(t *testing.T) {
	failed := &livepeer.Asset{ID: testAssetID, Status: livepeer.AssetStatus{Phase: livepeer.PhaseFailed}}
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{processingAsset(0.2), failed}})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageCreation, session.FailedStage)
	assert.Equal(t, apperrors.ErrMsgProcessingFailed, session.Error)
	assert.Equal(t, ProgressFailed, session.Progress.Phase)
	_, _, updates := env.pipeline.counts()
	assert.Zero(t, updates)
}

func TestUpdateFailure(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before:    []*livepeer.Asset{readyAsset()},
		updateErr: errors.New("storage unavailable"),
	})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageUpdate, session.FailedStage)
	assert.Equal(t, "storage unavailable", session.Error)
	assert.Zero(t, env.writer.count())
	assertPollingStopped(t, env)
}

func TestStorageExportFailure(t *testing.T) {
	failedExport := readyAsset()
	failedExport.Storage = &livepeer.AssetStorage{
		Status: &livepeer.StorageStatus{Phase: livepeer.PhaseFailed, ErrorMessage: "pinning failed"},
	}
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{readyAsset()},
		after:  []*livepeer.Asset{exportingAsset(), failedExport},
	})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageUpdate, session.FailedStage)
	assert.Equal(t, "pinning failed", session.Error)
	assert.Zero(t, env.writer.count())
}

func TestContractWriteFailure(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{readyAsset()},
		after:  []*livepeer.Asset{exportedAsset()},
	})
	env.writer.err = errors.New("insufficient funds for gas")
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageWrite, session.FailedStage)
	assert.False(t, session.Call.Success)

	view, err := env.service.Get(context.Background(), id, testWallet)
	require.NoError(t, err)
	require.NotNil(t, view.Result)
	assert.Equal(t, "insufficient funds for gas", view.Result.WriteError)
	assert.Empty(t, view.Result.TxURL)
	assert.Equal(t, 1, env.writer.count())
}

func TestWriteNotPreparedWithoutMetadata(t *testing.T) {
	exported := exportedAsset()
	exported.Storage.IPFS.NFTMetadata = nil
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{readyAsset()},
		after:  []*livepeer.Asset{exported},
	})
	id := prepared(t, env)

	_, err := env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	session := waitForState(t, env, id, StateFailed)
	assert.Equal(t, apperrors.StageWrite, session.FailedStage)
	assert.Zero(t, env.writer.count())
}

func TestHeldUpdateLatchSkipsUpdate(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{readyAsset()}})
	acquired, err := env.cache.SetNX(context.Background(), latchKeyPrefix+"update:"+testAssetID, "other", time.Hour)
	require.NoError(t, err)
	require.True(t, acquired)

	id := prepared(t, env)
	_, err = env.service.Create(context.Background(), id, testWallet)
	require.NoError(t, err)

	waitForState(t, env, id, StateUpdating)
	require.Eventually(t, func() bool {
		_, gets, _ := env.pipeline.counts()
		return gets >= 3
	}, waitFor, 5*time.Millisecond)

	_, _, updates := env.pipeline.counts()
	assert.Zero(t, updates)
	assert.Equal(t, StateUpdating, sessionOf(t, env, id).State)
}

func TestCreateRequiresFileAndName(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	ctx := context.Background()

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)

	_, err = env.service.Create(ctx, id, testWallet)
	assert.ErrorIs(t, err, ErrFileRequired)

	_, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t, upload{"clip.mp4", mp4Header}))
	require.NoError(t, err)
	_, err = env.service.Create(ctx, id, testWallet)
	assert.ErrorIs(t, err, ErrNameRequired)

	creates, _, _ := env.pipeline.counts()
	assert.Zero(t, creates)
	assert.Equal(t, StateIdle, sessionOf(t, env, id).State)
}

func TestSelectFileRejections(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	ctx := context.Background()

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)

	_, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t,
		upload{"a.mp4", mp4Header},
		upload{"b.mp4", mp4Header},
	))
	rejected, ok := intake.IsRejected(err)
	require.True(t, ok)
	assert.True(t, rejected.Silent)

	_, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t, upload{"notes.txt", []byte("just some text")}))
	rejected, ok = intake.IsRejected(err)
	require.True(t, ok)
	assert.True(t, rejected.Silent)

	session := sessionOf(t, env, id)
	assert.False(t, session.HasFile())
	assert.False(t, session.FileSelected)

	view, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t, upload{"clip.mp4", mp4Header}))
	require.NoError(t, err)
	assert.True(t, view.Intake.FileSelected)
	assert.Contains(t, view.Intake.Notices, TextFileSelected)
}

func TestSelectFileArchivesSource(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	archiver := &fakeArchiver{}
	env.service.deps.Archiver = archiver
	id := prepared(t, env)

	session := sessionOf(t, env, id)
	keys := archiver.archived()
	require.Len(t, keys, 1)
	assert.Equal(t, id.String()+"/clip.mp4", keys[0])
	assert.Equal(t, "s3://uploads/"+keys[0], session.ArchiveURL)
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSelectFileArchiveDoesNotBlockSession(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	archiver := &fakeArchiver{entered: make(chan struct{}), release: make(chan struct{})}
	env.service.deps.Archiver = archiver
	ctx := context.Background()

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)
	files := fileHeaders(t, upload{"clip.mp4", mp4Header})

	selected := make(chan error, 1)
	go func() {
		_, err := env.service.SelectFile(ctx, id, testWallet, files)
		selected <- err
	}()
	waitClosed(t, archiver.entered, "archive upload")

	read := make(chan error, 1)
	go func() {
		_, err := env.service.Get(ctx, id, testWallet)
		read <- err
	}()
	select {
	case err := <-read:
		require.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Get blocked behind the archive upload")
	}
	_, err = env.service.SetDetails(ctx, id, testWallet, "demo", "")
	require.NoError(t, err)

	close(archiver.release)
	select {
	case err := <-selected:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("SelectFile never returned")
	}

	session := sessionOf(t, env, id)
	assert.True(t, session.HasFile())
	assert.Equal(t, "demo", session.Name)
	assert.Equal(t, "s3://uploads/"+id.String()+"/clip.mp4", session.ArchiveURL)
}

func TestSelectFileAfterCloseDiscardsUpload(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	archiver := &fakeArchiver{entered: make(chan struct{}), release: make(chan struct{})}
	env.service.deps.Archiver = archiver
	ctx := context.Background()

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)
	files := fileHeaders(t, upload{"clip.mp4", mp4Header})

	selected := make(chan error, 1)
	go func() {
		_, err := env.service.SelectFile(ctx, id, testWallet, files)
		selected <- err
	}()
	waitClosed(t, archiver.entered, "archive upload")

	require.NoError(t, env.service.Close(ctx, id, testWallet))
	close(archiver.release)

	select {
	case err := <-selected:
		assert.ErrorIs(t, err, ErrSessionNotFound)
	case <-time.After(waitFor):
		t.Fatal("SelectFile never returned")
	}
	_, err = env.store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDetailsFrozenAfterCreate(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{processingAsset(0.1)}})
	id := prepared(t, env)
	ctx := context.Background()

	_, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)

	_, err = env.service.SetDetails(ctx, id, testWallet, "other", "")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.service.SelectFile(ctx, id, testWallet, fileHeaders(t, upload{"clip.mp4", mp4Header}))
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.service.Create(ctx, id, testWallet)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, "demo", sessionOf(t, env, id).Name)
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	ctx := context.Background()

	_, err := env.service.Open(ctx, "")
	assert.ErrorIs(t, err, ErrWalletRequired)

	view, err := env.service.Open(ctx, testWallet)
	require.NoError(t, err)
	id := uuid.MustParse(view.SessionID)

	_, err = env.service.Get(ctx, id, "0xabc0000000000000000000000000000000000002")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = env.service.Get(ctx, id, "")
	assert.ErrorIs(t, err, ErrWalletRequired)
	_, err = env.service.Get(ctx, uuid.New(), testWallet)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseStopsPolling(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{processingAsset(0.3)}})
	id := prepared(t, env)
	ctx := context.Background()

	_, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, gets, _ := env.pipeline.counts()
		return gets >= 2
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, env.service.Close(ctx, id, testWallet))
	assertPollingStopped(t, env)

	_, err = env.store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseCancelsUpload(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{release: make(chan struct{})})
	id := prepared(t, env)
	ctx := context.Background()

	_, err := env.service.Create(ctx, id, testWallet)
	require.NoError(t, err)
	require.NoError(t, env.service.Close(ctx, id, testWallet))

	shutdownCtx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()
	require.NoError(t, env.service.Shutdown(shutdownCtx))

	creates, gets, _ := env.pipeline.counts()
	assert.Zero(t, creates)
	assert.Zero(t, gets)
	_, err = env.store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResume(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{readyAsset()},
		after:  []*livepeer.Asset{exportedAsset()},
	})
	ctx := context.Background()
	now := time.Now()

	interrupted := NewSession(testWallet, now)
	interrupted.State = StateCreating
	require.NoError(t, env.store.Save(ctx, interrupted))

	waiting := NewSession(testWallet, now.Add(time.Second))
	waiting.State = StateCreated
	waiting.Name = "demo"
	waiting.AssetID = testAssetID
	require.NoError(t, env.store.Save(ctx, waiting))

	minted := NewSession(testWallet, now)
	minted.State = StateMinted
	require.NoError(t, env.store.Save(ctx, minted))

	resumed, err := env.service.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	failed := sessionOf(t, env, interrupted.ID)
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, apperrors.StageCreation, failed.FailedStage)

	session := waitForState(t, env, waiting.ID, StateMinted)
	assert.Equal(t, testTxHash, session.Call.TxHash)
}

func TestResumeFailsInterruptedExportAndWrite(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{readyAsset()}})
	ctx := context.Background()
	now := time.Now()

	updating := NewSession(testWallet, now)
	updating.State = StateUpdating
	updating.Name = "demo"
	updating.AssetID = testAssetID
	updating.StorageRequested = true
	require.NoError(t, env.store.Save(ctx, updating))

	var writes []*Session
	for _, state := range []State{StateStored, StateWriting} {
		session := NewSession(testWallet, now)
		session.State = state
		session.AssetID = testAssetID
		session.Storage.CID = testCID
		require.NoError(t, env.store.Save(ctx, session))
		writes = append(writes, session)
	}

	resumed, err := env.service.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	for _, session := range writes {
		failed := sessionOf(t, env, session.ID)
		assert.Equal(t, StateFailed, failed.State)
		assert.Equal(t, apperrors.StageWrite, failed.FailedStage)
		assert.NotEmpty(t, failed.Call.Error)
	}

	failed := waitForState(t, env, updating.ID, StateFailed)
	assert.Equal(t, apperrors.StageUpdate, failed.FailedStage)
	assertPollingStopped(t, env)

	_, _, updates := env.pipeline.counts()
	assert.Zero(t, updates)
	assert.Zero(t, env.writer.count())
	assert.Zero(t, env.trackedCount())
}

func TestResumeContinuesRunningExport(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{
		before: []*livepeer.Asset{exportingAsset(), exportedAsset()},
	})
	ctx := context.Background()

	updating := NewSession(testWallet, time.Now())
	updating.State = StateUpdating
	updating.Name = "demo"
	updating.AssetID = testAssetID
	updating.StorageRequested = true
	require.NoError(t, env.store.Save(ctx, updating))

	resumed, err := env.service.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	session := waitForState(t, env, updating.ID, StateMinted)
	assert.Equal(t, testTxHash, session.Call.TxHash)
	_, _, updates := env.pipeline.counts()
	assert.Zero(t, updates)
}

func TestCreateRacingShutdown(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{before: []*livepeer.Asset{processingAsset(0.1)}})
	ctx := context.Background()

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = prepared(t, env)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := env.service.Create(ctx, id, testWallet)
			errs <- err
		}(id)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()
	require.NoError(t, env.service.Shutdown(shutdownCtx))

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrShuttingDown)
		}
	}
}

func TestShutdownRefusesNewWork(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	id := prepared(t, env)
	ctx := context.Background()

	require.NoError(t, env.service.Shutdown(ctx))

	_, err := env.service.Open(ctx, testWallet)
	assert.ErrorIs(t, err, ErrShuttingDown)
	_, err = env.service.Create(ctx, id, testWallet)
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(-0.2))
	assert.Equal(t, 42, percent(0.42))
	assert.Equal(t, 100, percent(1.7))
}
