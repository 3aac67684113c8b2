package publish

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/validation"
)

// Asset is a tree of files a package makes available for publishing.
type Asset struct {
	// Tag groups assets so they can be published selectively.
	Tag string `validate:"required"`
	// Source holds the files. Paths inside it use forward slashes.
	Source fs.FS `validate:"required"`
	// Dir is the root within Source. Empty means ".".
	Dir string
	// Dest is the destination directory on the publisher's filesystem.
	Dest string `validate:"required"`
}

// Options controls a Publish run.
type Options struct {
	// Force overwrites files that already exist at the destination.
	Force bool
	// Tags restricts publishing to assets with these tags. Empty means all.
	Tags []string
}

// Result lists destination paths written and skipped by a Publish run.
type Result struct {
	Copied  []string
	Skipped []string
}

// Publisher holds the registered assets of one application.
type Publisher struct {
	fs     afero.Fs
	log    *logger.Logger
	assets []Asset
	mu     sync.RWMutex
}

// New creates a publisher writing to fsys. A nil logger discards output.
func New(fsys afero.Fs, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{
		fs:  fsys,
		log: log.WithComponent("publish"),
	}
}

// Register declares an asset. Registering the same tag twice adds a second tree.
func (p *Publisher) Register(asset Asset) error {
	if err := validation.Validate(asset); err != nil {
		return err
	}
	if asset.Dir == "" {
		asset.Dir = "."
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.assets = append(p.assets, asset)
	return nil
}

// Assets returns the registered assets in registration order.
func (p *Publisher) Assets() []Asset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Asset(nil), p.assets...)
}

// Tags returns the distinct registered tags, sorted.
func (p *Publisher) Tags() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := make(map[string]struct{}, len(p.assets))
	tags := make([]string, 0, len(p.assets))
	for _, a := range p.assets {
		if _, ok := seen[a.Tag]; ok {
			continue
		}
		seen[a.Tag] = struct{}{}
		tags = append(tags, a.Tag)
	}
	sort.Strings(tags)
	return tags
}

// Publish copies every selected asset to its destination, creating
// directories as needed. Existing files are skipped unless opts.Force is set.
// Requesting a tag nobody registered is an error.
func (p *Publisher) Publish(ctx context.Context, opts Options) (*Result, error) {
	selected, err := p.selectAssets(opts.Tags)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, asset := range selected {
		if err := p.publishAsset(ctx, asset, opts.Force, res); err != nil {
			return res, err
		}
	}

	p.log.Info("Published assets", logger.Fields(
		logger.FieldOperation, "publish",
		"copied", len(res.Copied),
		"skipped", len(res.Skipped),
	))
	return res, nil
}

func (p *Publisher) selectAssets(tags []string) ([]Asset, error) {
	all := p.Assets()
	if len(tags) == 0 {
		return all, nil
	}

	selected := make([]Asset, 0, len(all))
	for _, tag := range tags {
		found := false
		for _, a := range all {
			if a.Tag == tag {
				selected = append(selected, a)
				found = true
			}
		}
		if !found {
			return nil, errors.NotFound("publishable tag", tag)
		}
	}
	return selected, nil
}

func (p *Publisher) publishAsset(ctx context.Context, asset Asset, force bool, res *Result) error {
	if err := p.fs.MkdirAll(asset.Dest, 0o755); err != nil {
		return errors.Filesystem("mkdir", asset.Dest, err)
	}

	return fs.WalkDir(asset.Source, asset.Dir, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Filesystem("read", name, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := relative(asset.Dir, name)
		target := filepath.Join(asset.Dest, filepath.FromSlash(rel))
		if d.IsDir() {
			if err := p.fs.MkdirAll(target, 0o755); err != nil {
				return errors.Filesystem("mkdir", target, err)
			}
			return nil
		}

		exists, err := afero.Exists(p.fs, target)
		if err != nil {
			return errors.Filesystem("stat", target, err)
		}
		if exists && !force {
			res.Skipped = append(res.Skipped, target)
			p.log.Debug("Skipped existing file", logger.Fields(logger.FieldPath, target))
			return nil
		}

		data, err := fs.ReadFile(asset.Source, name)
		if err != nil {
			return errors.Filesystem("read", name, err)
		}
		if err := afero.WriteFile(p.fs, target, data, 0o644); err != nil {
			return errors.Filesystem("write", target, err)
		}
		res.Copied = append(res.Copied, target)
		p.log.Debug("Copied file", logger.Fields(logger.FieldPath, target, "tag", asset.Tag))
		return nil
	})
}

func relative(root, name string) string {
	if root == "." {
		return name
	}
	if name == root {
		return "."
	}
	return path.Clean(name[len(root)+1:])
}
