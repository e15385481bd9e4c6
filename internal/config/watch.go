package config

import (
	"context"
	"errors"

	"github.com/knadh/koanf/providers/file"
)

// Watch reloads the YAML file at path whenever it changes and hands the new
// Config to onChange. A reload that fails to parse or validate is passed to
// onError and the previous config stays in effect. Watch blocks until ctx is
// cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	if path == "" {
		return errors.New("config watch: empty path")
	}
	fp := file.Provider(path)
	err := fp.Watch(func(_ any, err error) {
		if err != nil {
			onError(err)
			return
		}
		cfg, err := LoadFile(ctx, path)
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return fp.Unwatch()
}
