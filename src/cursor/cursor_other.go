//go:build !windows

package cursor

func platformSource() (Source, bool) { return nil, false }
