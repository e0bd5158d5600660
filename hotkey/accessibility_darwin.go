package hotkey

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#import <ApplicationServices/ApplicationServices.h>
#import <Foundation/Foundation.h>

bool isAccessibilityEnabled(bool prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @(prompt)};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options);
}
*/
import "C"

// IsAccessibilityEnabled reports whether the process may observe global key
// events, optionally showing the system prompt.
func IsAccessibilityEnabled(prompt bool) bool {
	return bool(C.isAccessibilityEnabled(C.bool(prompt)))
}
