//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework Foundation
#import <AppKit/AppKit.h>
#import <Foundation/Foundation.h>
#include <stdlib.h>
#include <string.h>
#include <unistd.h>

char* frontmostBundleID() {
    @autoreleasepool {
        NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
        if (app == nil || app.bundleIdentifier == nil) {
            return NULL;
        }
        if (app.processIdentifier == getpid()) {
            return NULL;
        }
        return strdup([app.bundleIdentifier UTF8String]);
    }
}

int activateBundleID(const char* bid) {
    @autoreleasepool {
        NSString *s = [NSString stringWithUTF8String:bid];
        NSArray *apps = [NSRunningApplication runningApplicationsWithBundleIdentifier:s];
        if ([apps count] == 0) {
            return 0;
        }
        NSRunningApplication *app = [apps firstObject];
        return [app activateWithOptions:NSApplicationActivateIgnoringOtherApps] ? 1 : 0;
    }
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type darwinFocus struct{}

func newFocus() Focus {
	return darwinFocus{}
}

func (darwinFocus) Frontmost() (string, bool) {
	cstr := C.frontmostBundleID()
	if cstr == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), true
}

func (darwinFocus) Activate(id string) error {
	cstr := C.CString(id)
	defer C.free(unsafe.Pointer(cstr))
	if C.activateBundleID(cstr) == 0 {
		return fmt.Errorf("не удалось активировать %s", id)
	}
	return nil
}
