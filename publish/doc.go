// Package publish copies publishable assets declared by service providers
// (migration templates, stubs) into the application's working directories.
//
// Assets are read from any fs.FS, typically an embed.FS owned by the
// package that declares them, and written through an afero.Fs so callers
// can publish into memory during tests:
//
//	p := publish.New(afero.NewOsFs(), log)
//	_ = p.Register(publish.Asset{
//	    Tag:    "ban-migrations",
//	    Source: migrations,
//	    Dir:    "migrations",
//	    Dest:   "database/migrations",
//	})
//	res, err := p.Publish(ctx, publish.Options{Force: true})
package publish
