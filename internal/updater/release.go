package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lockblock/internal/logger"
	"lockblock/internal/paths"

	"golang.org/x/mod/semver"
)

// requestTimeout ограничивает запрос информации о релизе.
const requestTimeout = 15 * time.Second

// Asset - файл, приложенный к релизу.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// Release - описание релиза в формате GitHub API.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// AssetName возвращает имя файла сборки для платформы.
func AssetName(goos, goarch string) string {
	return fmt.Sprintf("%s-%s-%s", paths.AppName, goos, goarch)
}

// AssetFor ищет сборку для указанной платформы.
func (r *Release) AssetFor(goos, goarch string) (Asset, bool) {
	want := AssetName(goos, goarch)
	for _, a := range r.Assets {
		if a.Name == want || strings.HasPrefix(a.Name, want+".") {
			return a, true
		}
	}
	return Asset{}, false
}

// canonical приводит тег к виду vMAJOR.MINOR.PATCH.
func canonical(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag != "" && !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return semver.Canonical(tag)
}

// IsNewer сообщает, новее ли latest, чем current.
// Некорректный тег релиза никогда не считается новее.
func IsNewer(current, latest string) bool {
	l := canonical(latest)
	if l == "" {
		return false
	}
	c := canonical(current)
	if c == "" {
		return true
	}
	return semver.Compare(l, c) > 0
}

//================================================================================
// ЗАПРОС И ЗАГРУЗКА
//================================================================================

// Client запрашивает релизы и скачивает сборки.
type Client struct {
	http *http.Client
	log  *logger.Logger
}

// NewClient создает Client. При nil используется клиент с таймаутом.
func NewClient(httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{http: httpClient, log: log}
}

// Latest запрашивает последний релиз по адресу url.
func (c *Client) Latest(ctx context.Context, url string) (*Release, error) {
	c.log.Debug("Запрос последнего релиза: " + url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("некорректный адрес обновлений '%s': %w", url, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", paths.AppName)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить информацию о релизе: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("сервер обновлений вернул статус %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("не удалось разобрать ответ сервера обновлений: %w", err)
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("в ответе сервера нет версии релиза")
	}
	return &rel, nil
}

// Download сохраняет сборку в каталог dir и возвращает путь к файлу.
func (c *Client) Download(ctx context.Context, asset Asset, dir string) (string, error) {
	c.log.Info(fmt.Sprintf("Загрузка обновления %s", asset.Name))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог загрузки '%s': %w", dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return "", fmt.Errorf("некорректный адрес загрузки '%s': %w", asset.URL, err)
	}
	req.Header.Set("User-Agent", paths.AppName)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("не удалось загрузить обновление: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("сервер загрузки вернул статус %d", resp.StatusCode)
	}

	target := filepath.Join(dir, filepath.Base(asset.Name))
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("ошибка записи обновления: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("ошибка записи обновления: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return "", fmt.Errorf("не удалось установить права на файл обновления: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("не удалось сохранить обновление: %w", err)
	}

	c.log.Debug("Обновление сохранено: " + target)
	return target, nil
}

// Install заменяет исполняемый файл target загруженным файлом src.
// Замена атомарна: файл копируется рядом с target и переименовывается.
func Install(src, target string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("не удалось открыть загруженный файл: %w", err)
	}
	defer in.Close()

	mode := os.FileMode(0755)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".new-*")
	if err != nil {
		return fmt.Errorf("нет прав на запись рядом с '%s': %w", target, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка копирования обновления: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка копирования обновления: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось установить права на исполняемый файл: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("не удалось заменить исполняемый файл: %w", err)
	}
	return nil
}
