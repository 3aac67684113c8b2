// Package console runs framework commands against an application.
//
// The kernel exposes the commands packages and tests rely on:
//
//	about
//	vendor:publish [--force] [--tag TAG]
//	migrate [--path DIR] [--table TABLE]
//	migrate:status [--path DIR] [--table TABLE]
//	migrate:reset [--path DIR] [--table TABLE]
//
// Commands are cobra commands. Tests call them through Kernel.Call:
//
//	out, err := kernel.Call(ctx, "vendor:publish", "--force")
package console
