// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !linux

package mcelf

import "errors"

// OpenLive is unavailable off Linux/Android; use OpenFile against a pulled
// .so for development and testing on other platforms.
func OpenLive(suffix string) (*Module, error) {
	return nil, errors.New("mcelf: OpenLive is only supported on linux")
}
