// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !android

package redirector

import "github.com/go-kratos/kratos/v2/log"

// installEduModeTrampoline is a no-op off Android: there is no dynamic
// linker to search and no JNI entry point to shadow.
func installEduModeTrampoline(helper *log.Helper) {}
