//go:build cgo

package mcl

/*
#cgo linux LDFLAGS: -ldl
#cgo darwin LDFLAGS: -ldl
#include <stdlib.h>

#ifdef _WIN32
#include <windows.h>
typedef HMODULE mcl_lib;
static mcl_lib mcl_open(const char *path) { return LoadLibraryA(path); }
static void *mcl_sym(mcl_lib lib, const char *name) { return (void *)GetProcAddress(lib, name); }
static int mcl_close(mcl_lib lib) { return FreeLibrary(lib) ? 0 : -1; }
#else
#include <dlfcn.h>
typedef void *mcl_lib;
static mcl_lib mcl_open(const char *path) { return dlopen(path, RTLD_NOW | RTLD_LOCAL); }
static void *mcl_sym(mcl_lib lib, const char *name) { return dlsym(lib, name); }
static int mcl_close(mcl_lib lib) { return dlclose(lib); }
#endif

typedef int (*mcl_init_handle_fn)(void);
typedef double (*mcl_single_read_n_fn)(unsigned int, int);
typedef int (*mcl_single_write_n_fn)(double, unsigned int, int);
typedef void (*mcl_release_all_fn)(void);

static int call_init_handle(void *f) { return ((mcl_init_handle_fn)f)(); }
static double call_single_read_n(void *f, unsigned int axis, int handle) {
	return ((mcl_single_read_n_fn)f)(axis, handle);
}
static int call_single_write_n(void *f, double pos, unsigned int axis, int handle) {
	return ((mcl_single_write_n_fn)f)(pos, axis, handle);
}
static void call_release_all(void *f) { ((mcl_release_all_fn)f)(); }
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// Madlib is the Mad City Labs driver library, loaded at runtime.
// The four entry points are resolved once by Load.
type Madlib struct {
	path string
	lib  C.mcl_lib

	initHandle   unsafe.Pointer
	singleReadN  unsafe.Pointer
	singleWriteN unsafe.Pointer
	releaseAll   unsafe.Pointer
}

// Load opens the driver library at path and binds its entry points.
// Call Close to unload it.
func Load(path string) (*Madlib, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	lib := C.mcl_open(cpath)
	if lib == nil {
		return nil, fmt.Errorf("unable to load MCL driver library %s", path)
	}
	m := &Madlib{path: path, lib: lib}
	syms := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"MCL_InitHandle", &m.initHandle},
		{"MCL_SingleReadN", &m.singleReadN},
		{"MCL_SingleWriteN", &m.singleWriteN},
		{"MCL_ReleaseAllHandles", &m.releaseAll},
	}
	for _, s := range syms {
		cname := C.CString(s.name)
		ptr := C.mcl_sym(lib, cname)
		C.free(unsafe.Pointer(cname))
		if ptr == nil {
			C.mcl_close(lib)
			return nil, fmt.Errorf("MCL driver library %s does not export %s", path, s.name)
		}
		*s.dst = ptr
	}
	return m, nil
}

// InitHandle calls MCL_InitHandle
func (m *Madlib) InitHandle() int {
	return int(C.call_init_handle(m.initHandle))
}

// SingleReadN calls MCL_SingleReadN
func (m *Madlib) SingleReadN(axis Axis, handle int) float64 {
	return float64(C.call_single_read_n(m.singleReadN, C.uint(axis), C.int(handle)))
}

// SingleWriteN calls MCL_SingleWriteN
func (m *Madlib) SingleWriteN(position float64, axis Axis, handle int) int {
	return int(C.call_single_write_n(m.singleWriteN, C.double(position), C.uint(axis), C.int(handle)))
}

// ReleaseAllHandles calls MCL_ReleaseAllHandles
func (m *Madlib) ReleaseAllHandles() {
	C.call_release_all(m.releaseAll)
}

// Close unloads the library.  The Madlib is unusable afterwards.
func (m *Madlib) Close() error {
	if m.lib == nil {
		return nil
	}
	ret := C.mcl_close(m.lib)
	m.lib = nil
	if ret != 0 {
		return fmt.Errorf("unable to unload MCL driver library %s", m.path)
	}
	return nil
}
