//go:build !unix

package staging

var Default = Heap
