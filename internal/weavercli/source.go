package weavercli

import (
	"context"
	"io/fs"
	"os"

	"github.com/build-flow-labs/weaver/internal/registrysource"
	"github.com/build-flow-labs/weaver/registry"
)

// loadRegistry accepts either a local directory or an "owner/repo[@ref]"
// GitHub source, loads the raw registry, and resolves it.
func loadRegistry(ctx context.Context, registryFlag, githubToken string) (*registry.Registry, error) {
	var fsys fs.FS
	var root string

	if registrysource.IsRemote(registryFlag) {
		ref, err := registrysource.ParseRef(registryFlag)
		if err != nil {
			return nil, withExit(ExitConfigError, err)
		}
		fsys = registrysource.NewFS(ctx, ref, githubToken)
		root = "."
	} else {
		fsys = os.DirFS(registryFlag)
		root = "."
	}

	raw, err := registry.Load(fsys, root)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}

	resolved, err := registry.Resolve(raw)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}
	return resolved, nil
}
