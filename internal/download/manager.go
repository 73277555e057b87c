package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ochronus/gogett/gett"
	"github.com/ochronus/gogett/internal/config"
)

// Fetcher streams the content of a Ge.tt file.
type Fetcher interface {
	Download(ctx context.Context, f *gett.File, w io.Writer) (int64, error)
}

// Manager downloads share files with a fixed pool of workers
type Manager struct {
	config       *config.Config
	client       Fetcher
	downloadChan chan DownloadTargetMessage
	logger       *logrus.Logger

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a new download manager
func NewManager(cfg *config.Config, logger *logrus.Logger, client Fetcher) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:       cfg,
		client:       client,
		downloadChan: make(chan DownloadTargetMessage, 100),
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins the download manager's operations with a background context.
func (m *Manager) Start() error {
	return m.StartWithContext(context.Background())
}

// StartWithContext starts the download workers using the provided parent context.
func (m *Manager) StartWithContext(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("download manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	for i := 0; i < m.config.DownloadWorkers; i++ {
		m.wg.Add(1)
		go m.downloadWorker(i)
	}

	return nil
}

// Stop signals all workers to exit and waits for them to finish.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

// downloadWorker handles file downloads
func (m *Manager) downloadWorker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case msg := <-m.downloadChan:
			status := m.downloadTarget(msg.Ctx, &msg.Target)
			select {
			case <-m.ctx.Done():
				return
			case msg.DoneChan <- status:
			}
		}
	}
}

// DownloadShare saves every file of share below ShareDir and waits for all of
// them. It returns an error when any file failed. Canceling ctx aborts the
// transfers it queued.
func (m *Manager) DownloadShare(ctx context.Context, share *gett.Share, dir string) (*Result, error) {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("download manager not started")
	}

	targets := BuildTargets(share, dir)
	result := &Result{
		Share:   share.Name,
		Dir:     ShareDir(share, dir),
		Entries: make([]ResultEntry, len(targets)),
	}

	m.logger.Infof("[%s]: download started, %d files", share.Name, len(targets))

	if err := os.MkdirAll(result.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", result.Dir, err)
	}

	doneChans := make([]chan DownloadDoneStatus, len(targets))
	for i, target := range targets {
		result.Entries[i] = ResultEntry{Target: target, Status: DownloadStatusFailed}
		doneChans[i] = make(chan DownloadDoneStatus, 1)
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-m.ctx.Done():
			return result, errors.New("download manager stopped")
		case m.downloadChan <- DownloadTargetMessage{
			Ctx:      ctx,
			Target:   target,
			DoneChan: doneChans[i],
		}:
		}
	}

	for i, doneChan := range doneChans {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-m.ctx.Done():
			return result, errors.New("download manager stopped")
		case status := <-doneChan:
			result.Entries[i].Status = status
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if failed := result.Count(DownloadStatusFailed); failed > 0 {
		m.logger.Warnf("[%s]: not all files downloaded", share.Name)
		return result, fmt.Errorf("%d of %d files failed to download", failed, len(targets))
	}

	m.logger.Infof("[%s]: download done", share.Name)
	return result, nil
}

// downloadTarget downloads a single target
func (m *Manager) downloadTarget(ctx context.Context, target *DownloadTarget) DownloadDoneStatus {
	if _, err := os.Stat(target.To); err == nil {
		m.logger.Infof("%s: already exists", target)
		return DownloadStatusSkipped
	}

	m.logger.Infof("%s: download started", target)
	n, err := m.fetchFile(ctx, target)
	if err != nil {
		m.logger.Errorf("%s: download failed: %v", target, err)
		return DownloadStatusFailed
	}
	m.logger.Infof("%s: download succeeded (%d bytes)", target, n)
	return DownloadStatusSuccess
}

// fetchFile streams a file into a temporary path and renames it into place
func (m *Manager) fetchFile(ctx context.Context, target *DownloadTarget) (int64, error) {
	tmpPath := target.To + ".downloading"

	if err := os.MkdirAll(filepath.Dir(target.To), 0755); err != nil {
		return 0, err
	}

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}
	defer tmpFile.Close()

	// Stop aborts transfers as well as the caller canceling ctx.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	n, err := m.client.Download(ctx, &target.File, tmpFile)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return n, err
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return n, err
	}

	return n, os.Rename(tmpPath, target.To)
}
