package mint

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/cache"
	"github.com/consensuslabs/pavilion-mint/internal/chain"
	"github.com/consensuslabs/pavilion-mint/internal/intake"
	"github.com/consensuslabs/pavilion-mint/internal/intake/tempfile"
	"github.com/consensuslabs/pavilion-mint/internal/livepeer"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/stretchr/testify/require"
)

const (
	testWallet      = "0xabc0000000000000000000000000000000000001"
	testAssetID     = "a1"
	testCID         = "bafy123"
	testMetadataURL = "ipfs://bafy123/meta.json"
	testTxHash      = "0xdeadbeef"
)

// mp4Header is the start of an ISO base media file
var mp4Header = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41"), make([]byte, 64)...)

func processingAsset(progress float64) *livepeer.Asset {
	return &livepeer.Asset{
		ID:     testAssetID,
		Status: livepeer.AssetStatus{Phase: livepeer.PhaseProcessing, Progress: progress},
	}
}

func readyAsset() *livepeer.Asset {
	return &livepeer.Asset{
		ID:     testAssetID,
		Status: livepeer.AssetStatus{Phase: livepeer.PhaseReady, Progress: 1},
	}
}

func exportingAsset() *livepeer.Asset {
	a := readyAsset()
	a.Storage = &livepeer.AssetStorage{Status: &livepeer.StorageStatus{Phase: livepeer.PhaseProcessing}}
	return a
}

func exportedAsset() *livepeer.Asset {
	a := readyAsset()
	a.Storage = &livepeer.AssetStorage{
		Status: &livepeer.StorageStatus{Phase: livepeer.PhaseReady},
		IPFS: &livepeer.IPFSStorage{
			CID:         testCID,
			URL:         "ipfs://" + testCID,
			GatewayURL:  "https://ipfs.io/ipfs/" + testCID,
			NFTMetadata: &livepeer.IPFSFileRef{URL: testMetadataURL},
		},
	}
	return a
}

// fakePipeline replays scripted asset states. before is served until the
// storage update arrives, after from then on; the last entry repeats.
// release gates the start of an upload; when halfway is set the upload
// closes it at 50% and waits on proceed before finishing.
type fakePipeline struct {
	mu sync.Mutex

	before []*livepeer.Asset
	after  []*livepeer.Asset

	createErr error
	getErr    error
	updateErr error
	release   chan struct{}
	halfway   chan struct{}
	proceed   chan struct{}

	uploaded    []byte
	creates     int
	gets        int
	beforeStart int
	updates     int
	getsAfter   int
	lastUpdate  livepeer.UpdateAssetRequest
}

func (p *fakePipeline) CreateAsset(ctx context.Context, name string, body io.Reader, size int64, onProgress func(float64)) (*livepeer.Asset, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	onProgress(0.5)
	if p.halfway != nil {
		close(p.halfway)
		select {
		case <-p.proceed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	onProgress(1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.creates++
	p.uploaded = data
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &livepeer.Asset{ID: testAssetID, Name: name, Status: livepeer.AssetStatus{Phase: livepeer.PhaseWaiting}}, nil
}

func (p *fakePipeline) GetAsset(ctx context.Context, id string) (*livepeer.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.getErr != nil {
		return nil, p.getErr
	}

	script, index := p.before, p.gets-1-p.beforeStart
	if p.updates > 0 {
		p.getsAfter++
		script, index = p.after, p.getsAfter-1
	}
	if len(script) == 0 {
		return processingAsset(0.1), nil
	}
	if index >= len(script) {
		index = len(script) - 1
	}
	copied := *script[index]
	return &copied, nil
}

func (p *fakePipeline) UpdateAsset(ctx context.Context, id string, req livepeer.UpdateAssetRequest) (*livepeer.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.lastUpdate = req
	if p.updateErr != nil {
		return nil, p.updateErr
	}
	return readyAsset(), nil
}

// script replaces the states served before the storage update
func (p *fakePipeline) script(before ...*livepeer.Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.before = before
	p.beforeStart = p.gets
}

func (p *fakePipeline) counts() (creates, gets, updates int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates, p.gets, p.updates
}

type fakeWriter struct {
	mu    sync.Mutex
	err   error
	calls []*chain.PreparedCall
}

func (w *fakeWriter) Write(ctx context.Context, call *chain.PreparedCall) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
	if w.err != nil {
		return "", w.err
	}
	return testTxHash, nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

type fakeMirror struct {
	mu   sync.Mutex
	cids []string
}

func (m *fakeMirror) Pin(ctx context.Context, cid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cids = append(m.cids, cid)
	return nil
}

func (m *fakeMirror) pinned() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cids...)
}

// fakeArchiver records archive keys. When entered is set it is closed on
// the first call, which then blocks until release is closed.
type fakeArchiver struct {
	mu      sync.Mutex
	keys    []string
	entered chan struct{}
	release chan struct{}
}

func (a *fakeArchiver) Archive(ctx context.Context, key, filePath, contentType string) (string, error) {
	a.mu.Lock()
	a.keys = append(a.keys, key)
	first := len(a.keys) == 1
	a.mu.Unlock()

	if first && a.entered != nil {
		close(a.entered)
		<-a.release
	}
	return "s3://uploads/" + key, nil
}

func (a *fakeArchiver) archived() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.keys...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	service   *Service
	store     *MemoryStore
	timeline  *MemoryTimeline
	pipeline  *fakePipeline
	writer    *fakeWriter
	mirror    *fakeMirror
	publisher *recordingPublisher
	cache     *cache.MemoryService
}

// trackedCount reports how many sessions the service holds in memory
func (e *testEnv) trackedCount() int {
	e.service.mu.Lock()
	defer e.service.mu.Unlock()
	return len(e.service.sessions)
}

func newTestEnv(t *testing.T, pipeline *fakePipeline) *testEnv {
	t.Helper()

	log := logger.NewNopLogger()
	manager, err := tempfile.NewManager(&tempfile.Config{BaseDir: t.TempDir()}, log)
	require.NoError(t, err)
	intakeService := intake.NewService(&intake.Config{
		MaxSize:        1 << 20,
		AllowedFormats: []string{"mp4", "mov"},
		MaxNameLength:  100,
		MaxDescLength:  1000,
	}, manager, log)

	preparer, err := chain.NewPreparer(chain.DefaultContractAddress, chain.DefaultFunctionName)
	require.NoError(t, err)

	env := &testEnv{
		store:     NewMemoryStore(),
		timeline:  NewMemoryTimeline(),
		pipeline:  pipeline,
		writer:    &fakeWriter{},
		mirror:    &fakeMirror{},
		publisher: &recordingPublisher{},
		cache:     cache.NewMemoryService(),
	}
	env.service = NewService(Config{PollInterval: 10 * time.Millisecond}, Dependencies{
		Store:     env.store,
		Timeline:  env.timeline,
		Latch:     NewCacheLatch(env.cache, time.Hour, "test"),
		Publisher: env.publisher,
		Pipeline:  pipeline,
		Preparer:  preparer,
		Writer:    env.writer,
		Intake:    intakeService,
		Mirror:    env.mirror,
		Logger:    log,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = env.service.Shutdown(ctx)
	})
	return env
}

type upload struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, uploads ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := writer.CreateFormFile("video", u.name)
		require.NoError(t, err)
		_, err = part.Write(u.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func fileHeaders(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()
	body, contentType := multipartBody(t, uploads...)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { req.MultipartForm.RemoveAll() })
	return req.MultipartForm.File["video"]
}
