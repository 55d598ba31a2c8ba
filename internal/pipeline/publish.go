package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var photoNames = []string{"1.jpg", "2.jpg", "3.jpg"}

// publish is phase 2: copy canonical GPX files (and photos unless
// disabled) into the publish tree. Only files newer than the marker's
// modification time are copied; the copy preserves the source mtime so
// the next run compares against the original recording time.
func (r *runner) publish(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.PublishRoot, 0o755); err != nil {
		return fmt.Errorf("create publish root: %w", err)
	}

	var lastCopy time.Time
	if info, err := os.Stat(r.cfg.MarkerFile); err == nil {
		lastCopy = info.ModTime()
		r.infof("Incremental copy: only files newer than %s", lastCopy.Format(time.RFC3339))
	} else {
		r.infof("First run or marker missing: copying all files")
	}

	categories, err := subdirs(r.cfg.SourceRoot)
	if err != nil {
		return err
	}

	for _, category := range categories {
		catPath := filepath.Join(r.cfg.SourceRoot, category)
		tours, err := subdirs(catPath)
		if err != nil {
			return err
		}

		for _, tourID := range tours {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tourPath := filepath.Join(catPath, tourID)
			srcGpx := filepath.Join(tourPath, tourID+".gpx")
			info, err := os.Stat(srcGpx)
			if err != nil {
				continue
			}

			dstDir := filepath.Join(r.cfg.PublishRoot, tourID)
			if err := os.MkdirAll(dstDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dstDir, err)
			}

			if info.ModTime().After(lastCopy) {
				if err := copyFile(srcGpx, filepath.Join(dstDir, tourID+".gpx")); err != nil {
					r.errorf("Copy failed for %s: %v", srcGpx, err)
					r.summary.Failed++
					continue
				}
				r.infof("Copied GPX: %s.gpx", tourID)
				r.summary.Copies++
			}

			if r.opts.SkipImages {
				continue
			}
			for _, img := range photoNames {
				srcImg := filepath.Join(tourPath, img)
				imgInfo, err := os.Stat(srcImg)
				if err != nil || !imgInfo.ModTime().After(lastCopy) {
					continue
				}
				if err := copyFile(srcImg, filepath.Join(dstDir, img)); err != nil {
					r.warnf("Copy failed for %s: %v", srcImg, err)
					continue
				}
				r.infof("Copied photo: %s/%s", tourID, img)
				r.summary.Copies++
			}
		}
	}
	return nil
}

// copyFile copies src to dst and carries the source modification time
// over, like cp -p.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
