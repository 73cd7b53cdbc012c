//go:build !unix

package arena

// Anonymous mappings are only wired up on unix; elsewhere the mmap id is
// served by the heap arena so callers keep working.
var mmapImpl Arena = heapArena{}
