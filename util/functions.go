package util

import (
	"runtime"
	"unicode"
	"unicode/utf8"
)

func RangeInt(to int) []int {
	retval := make([]int, to)
	for i := 0; i < to; i++ {
		retval[i] = i
	}
	return retval
}

func Max(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func Min(a, b int) int {
	if a > b {
		return b
	}
	return a
}

func LogMemory() {
	s := &runtime.MemStats{}
	runtime.ReadMemStats(s)
	Logger().Debugw("memory",
		"alloc", s.Alloc,
		"mallocs", s.Mallocs,
		"frees", s.Frees,
		"heapAlloc", s.HeapAlloc,
		"heapReleased", s.HeapReleased,
		"heapObjects", s.HeapObjects,
		"stackInuse", s.StackInuse,
	)
}

type RuneTester func(r rune) bool

func TestEach(t RuneTester, s string) byte {
	for i, w := 0, 0; i < len(s); i += w {
		runeValue, width := utf8.DecodeRuneInString(s[i:])
		if t(runeValue) {
			return 't'
		}
		w = width
	}
	return 'f'
}

var Testers = []RuneTester{
	unicode.IsDigit,
	unicode.IsLetter,
	unicode.IsLower,
	unicode.IsPunct,
	unicode.IsSymbol,
	unicode.IsTitle,
	unicode.IsUpper,
}

// Signature is a coarse shape of s, one t/f byte per tester.
func Signature(s string) string {
	indicators := make([]byte, len(Testers))
	for i, t := range Testers {
		indicators[i] = TestEach(t, s)
	}
	return string(indicators)
}

// Prefix and Suffix count runes, not bytes.
func Prefix(s string, n int) string {
	runes := []rune(s)
	return string(runes[0:Min(len(runes), n)])
}

func Suffix(s string, n int) string {
	runes := []rune(s)
	return string(runes[Max(len(runes)-n, 0):])
}
