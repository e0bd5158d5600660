//go:build darwin

package clipboard

import (
	"errors"
	"sync"
	"unsafe"
)

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #include <stdlib.h>
// #import <Cocoa/Cocoa.h>
// bool copyPNGFile(const char* path) {
//     @autoreleasepool {
//         NSData *data = [NSData dataWithContentsOfFile:[NSString stringWithUTF8String:path]];
//         if (data == nil) {
//             return false;
//         }
//         NSPasteboard *pasteboard = [NSPasteboard generalPasteboard];
//         [pasteboard clearContents];
//         return [pasteboard setData:data forType:NSPasteboardTypePNG];
//     }
// }
import "C"

var clipboardLock sync.Mutex

func copyImage(path string) error {
	clipboardLock.Lock()
	defer clipboardLock.Unlock()

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	if !C.copyPNGFile(cPath) {
		return errors.New("failed to set pasteboard image")
	}
	return nil
}
