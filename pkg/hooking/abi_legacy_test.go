//go:build hostabi_legacy

package hooking

func testFileName(s string) FileNameArg {
	return CString(s + "\x00")
}
