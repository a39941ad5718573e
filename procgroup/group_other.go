//go:build !unix

package procgroup

import "os"

// Group is a no-op stand-in where process groups do not exist; children
// are still killed individually through their contexts.
type Group struct {
	pgid int
}

func Lead() (*Group, error) {
	return &Group{pgid: os.Getpid()}, nil
}

func (g *Group) ID() int {
	return g.pgid
}

func (g *Group) Terminate() error {
	return nil
}
