package channel

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/notebook-tools/env-composer/internal/utils/logger"
	"github.com/notebook-tools/env-composer/internal/utils/network"
)

// DefaultMirror is the base URL used for channels given by bare name.
const DefaultMirror = "https://conda.anaconda.org"

type syncJob struct {
	url  string
	dest string
}

// IndexURL returns the repodata URL for a channel and subdir. Channels may
// be bare names (resolved against the default mirror) or full URLs.
func IndexURL(channel, subdir string) string {
	base := channel
	if !strings.Contains(channel, "://") {
		base = DefaultMirror + "/" + channel
	}
	return strings.TrimRight(base, "/") + "/" + subdir + "/repodata.json"
}

// channelDirName maps a channel identifier to a cache directory name.
func channelDirName(channel string) string {
	if !strings.Contains(channel, "://") {
		return channel
	}
	trimmed := strings.TrimRight(channel, "/")
	return filepath.Base(trimmed)
}

// Sync downloads the repodata of every channel/subdir pair into destDir
// using a pool of workers. It shows a single progress bar tracking indexes
// completed vs total.
func Sync(channels []string, destDir string, workers int) error {
	log := zap.L().Sugar()

	if workers < 1 {
		workers = 1
	}

	var jobs []syncJob
	for _, ch := range channels {
		for _, subdir := range Subdirs {
			jobs = append(jobs, syncJob{
				url:  IndexURL(ch, subdir),
				dest: filepath.Join(destDir, channelDirName(ch), subdir, "repodata.json"),
			})
		}
	}

	total := len(jobs)
	queue := make(chan syncJob, total)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []string

	// create a single progress bar for total indexes
	bar := progressbar.NewOptions(total,
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("syncing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	client := network.NewSecureHTTPClient()

	// start worker goroutines
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				bar.Describe(fmt.Sprintf("syncing %s", job.url))

				if err := fetchIndex(client, job.url, job.dest); err != nil {
					log.Errorf("syncing %s failed: %v", job.url, err)
					mu.Lock()
					failed = append(failed, job.url)
					mu.Unlock()
				} else {
					mu.Lock()
					logger.GlobalSyncReport.Items = append(logger.GlobalSyncReport.Items, job.url)
					mu.Unlock()
				}
				bar.Add(1)
			}
		}()
	}

	// enqueue jobs
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	wg.Wait()
	bar.Finish()

	if len(failed) > 0 {
		return fmt.Errorf("failed to sync %d of %d indexes", len(failed), total)
	}
	return nil
}

func fetchIndex(client *http.Client, url, destPath string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
