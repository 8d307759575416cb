package updater

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"lockblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrompter отвечает на вопросы заранее заданным ответом.
type fakePrompter struct {
	mu        sync.Mutex
	answer    bool
	questions []string
	infos     []string
	errors    []string
	// block, если задан, задерживает ответ на вопрос.
	block chan struct{}
	asked chan struct{}
}

func (p *fakePrompter) Question(title, message string) (bool, error) {
	p.mu.Lock()
	p.questions = append(p.questions, message)
	p.mu.Unlock()
	if p.asked != nil {
		close(p.asked)
	}
	if p.block != nil {
		<-p.block
	}
	return p.answer, nil
}

func (p *fakePrompter) Info(title, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.infos = append(p.infos, message)
	return nil
}

func (p *fakePrompter) Error(title, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, message)
	return nil
}

const payload = "new-binary-content"

// releaseServer отдает описание релиза и файл сборки.
func releaseServer(t *testing.T, tag string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		rel := Release{
			TagName: tag,
			Assets: []Asset{
				{Name: "lockblock-plan9-arm", URL: srv.URL + "/other"},
				{Name: AssetName("linux", "amd64"), URL: srv.URL + "/asset"},
			},
		}
		_ = json.NewEncoder(w).Encode(rel)
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "упал", http.StatusInternalServerError)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fixture struct {
	workflow *Workflow
	prompter *fakePrompter
	binary   string
	statuses []Status
	mu       sync.Mutex
}

func newFixture(t *testing.T, srv *httptest.Server, path string, answer bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	binary := filepath.Join(dir, "lockblock")
	require.NoError(t, os.WriteFile(binary, []byte("old"), 0755))

	f := &fixture{prompter: &fakePrompter{answer: answer}, binary: binary}
	f.workflow = NewWorkflow(NewClient(srv.Client(), logger.Discard()), f.prompter, Options{
		CurrentVersion: "v1.0.0",
		URL:            func() string { return srv.URL + path },
		BinaryPath:     binary,
		DownloadDir:    filepath.Join(dir, "download"),
		GOOS:           "linux",
		GOARCH:         "amd64",
		OnStatus: func(s Status) {
			f.mu.Lock()
			f.statuses = append(f.statuses, s)
			f.mu.Unlock()
		},
	}, logger.Discard())
	return f
}

// TestIsNewer проверяет сравнение версий
func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"v1.0.0", "v1.0.1", true},
		{"1.0.0", "1.1.0", true},
		{"v1.2.0", "v1.2.0", false},
		{"v2.0.0", "v1.9.9", false},
		{"v1.0.0", "мусор", false},
		{"dev", "v0.1.0", true},
	}
	for _, tt := range tests {
		if got := IsNewer(tt.current, tt.latest); got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, ожидалось %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

// TestAssetFor проверяет выбор сборки для платформы
func TestAssetFor(t *testing.T) {
	rel := Release{Assets: []Asset{
		{Name: "lockblock-darwin-arm64.zip"},
		{Name: "lockblock-linux-amd64"},
	}}

	a, ok := rel.AssetFor("linux", "amd64")
	assert.True(t, ok)
	assert.Equal(t, "lockblock-linux-amd64", a.Name)

	a, ok = rel.AssetFor("darwin", "arm64")
	assert.True(t, ok)
	assert.Equal(t, "lockblock-darwin-arm64.zip", a.Name)

	_, ok = rel.AssetFor("windows", "amd64")
	assert.False(t, ok)
}

// TestWorkflowUpToDate проверяет сообщение об актуальной версии
func TestWorkflowUpToDate(t *testing.T) {
	srv := releaseServer(t, "v1.0.0")
	f := newFixture(t, srv, "/latest", true)

	outcome, err := f.workflow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpToDate, outcome)
	assert.Equal(t, []string{MsgUpToDate}, f.prompter.infos)
	assert.Empty(t, f.prompter.questions)
	assert.Equal(t, StatusIdle, f.workflow.Status())
	assert.Equal(t, []Status{StatusChecking, StatusResultPending, StatusIdle}, f.statuses)
}

// TestWorkflowDeclined проверяет отказ пользователя от обновления
func TestWorkflowDeclined(t *testing.T) {
	srv := releaseServer(t, "v1.1.0")
	f := newFixture(t, srv, "/latest", false)

	outcome, err := f.workflow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
	assert.Equal(t, []string{MsgFound}, f.prompter.questions)
	assert.Equal(t, StatusIdle, f.workflow.Status())

	data, err := os.ReadFile(f.binary)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

// TestWorkflowInstalled проверяет загрузку и замену исполняемого файла
func TestWorkflowInstalled(t *testing.T) {
	srv := releaseServer(t, "v1.1.0")
	f := newFixture(t, srv, "/latest", true)

	outcome, err := f.workflow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInstalled, outcome)
	assert.Equal(t, []string{MsgDownloaded}, f.prompter.infos)

	data, err := os.ReadFile(f.binary)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	info, err := os.Stat(f.binary)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.Equal(t, StatusIdle, f.workflow.Status())
}

// TestWorkflowNetworkError проверяет окно ошибки и возврат в ожидание
func TestWorkflowNetworkError(t *testing.T) {
	srv := releaseServer(t, "v1.1.0")
	f := newFixture(t, srv, "/broken", true)

	outcome, err := f.workflow.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Len(t, f.prompter.errors, 1)
	assert.Equal(t, StatusIdle, f.workflow.Status())
	assert.Equal(t, []Status{StatusChecking, StatusIdle}, f.statuses)
}

// TestWorkflowNoAsset проверяет отсутствие сборки для платформы
func TestWorkflowNoAsset(t *testing.T) {
	srv := releaseServer(t, "v1.1.0")
	f := newFixture(t, srv, "/latest", true)
	f.workflow.opts.GOOS = "windows"

	outcome, err := f.workflow.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, []string{msgErrorPrefix + MsgNoAsset}, f.prompter.errors)
}

// TestWorkflowBusy проверяет, что второй запуск во время первого отклоняется
func TestWorkflowBusy(t *testing.T) {
	srv := releaseServer(t, "v1.1.0")
	f := newFixture(t, srv, "/latest", false)
	f.prompter.block = make(chan struct{})
	f.prompter.asked = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.workflow.Run(context.Background())
	}()

	<-f.prompter.asked
	assert.Equal(t, StatusResultPending, f.workflow.Status())

	_, err := f.workflow.Run(context.Background())
	assert.True(t, errors.Is(err, ErrBusy))

	close(f.prompter.block)
	<-done
	assert.Equal(t, StatusIdle, f.workflow.Status())
}

// TestInstallReplacesFile проверяет атомарную замену файла
func TestInstallReplacesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("новый"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("старый"), 0700))

	require.NoError(t, Install(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "новый", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
