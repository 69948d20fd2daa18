// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build android

package jnibridge

/*
#include <jni.h>
#include <stdlib.h>

static jsize mc_array_len(JNIEnv *env, jobjectArray arr) {
	if (arr == NULL) {
		return 0;
	}
	return (*env)->GetArrayLength(env, arr);
}

static jstring mc_array_get(JNIEnv *env, jobjectArray arr, jsize i) {
	return (jstring)(*env)->GetObjectArrayElement(env, arr, i);
}

static const char *mc_opt_jstring_to_cstr(JNIEnv *env, jstring s) {
	if (s == NULL) {
		return NULL;
	}
	return (*env)->GetStringUTFChars(env, s, NULL);
}

static void mc_opt_release_cstr(JNIEnv *env, jstring s, const char *cstr) {
	if (s != NULL && cstr != NULL) {
		(*env)->ReleaseStringUTFChars(env, s, cstr);
	}
}
*/
import "C"

import (
	"sync/atomic"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"
)

var activeTranscoder atomic.Pointer[transcoder.Transcoder]

// SetTranscoder registers the live Transcoder these JVM entry points tune.
// Called once from redirector.Install; a nil value makes every entry
// point below a no-op.
func SetTranscoder(t *transcoder.Transcoder) {
	activeTranscoder.Store(t)
}

// nativeSetEnabledVersions is spec.md §6's JVM entry point (a): it parses
// a Java String[] of version enumeration members and replaces the set of
// schema versions the transcoder will attempt to parse input under.
// Entries that don't match the known enumeration are skipped silently.
//
//export nativeSetEnabledVersions
func nativeSetEnabledVersions(env *C.JNIEnv, thiz C.jobject, jversions C.jobjectArray) {
	t := activeTranscoder.Load()
	if t == nil {
		return
	}

	n := int(C.mc_array_len(env, jversions))
	versions := make([]materialbin.SchemaVersion, 0, n)
	for i := 0; i < n; i++ {
		jstr := C.mc_array_get(env, jversions, C.jsize(i))
		if jstr == nil {
			continue
		}
		cstr := C.mc_opt_jstring_to_cstr(env, jstr)
		if cstr == nil {
			continue
		}
		s := C.GoString(cstr)
		C.mc_opt_release_cstr(env, jstr, cstr)

		if v, ok := materialbin.ParseVersionString(s); ok {
			versions = append(versions, v)
		}
	}
	t.SetEnabledVersions(versions)
}

// nativeSetHandleLightmaps is spec.md §6's JVM entry point (b): toggles
// the lightmap patch.
//
//export nativeSetHandleLightmaps
func nativeSetHandleLightmaps(env *C.JNIEnv, thiz C.jobject, enabled C.jboolean) {
	if t := activeTranscoder.Load(); t != nil {
		t.SetHandleLightmaps(enabled != C.JNI_FALSE)
	}
}

// nativeSetHandleTextureLods is spec.md §6's JVM entry point (c): toggles
// the texture-LOD patch.
//
//export nativeSetHandleTextureLods
func nativeSetHandleTextureLods(env *C.JNIEnv, thiz C.jobject, enabled C.jboolean) {
	if t := activeTranscoder.Load(); t != nil {
		t.SetHandleTextureLODs(enabled != C.JNI_FALSE)
	}
}
