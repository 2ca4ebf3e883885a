//go:build !hostabi_legacy

package hooking

func testFileName(s string) FileNameArg {
	return NewHostString(s)
}
