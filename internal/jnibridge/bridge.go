// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build android

// Package jnibridge implements the one replacement function that must be
// installed via inline trampoline patching rather than a PLT/GOT rewrite:
// the JVM calls it directly at its exported address, so pltpatch's
// relocation-table approach can't reach it (spec.md §4.1 rationale).
//
// The replacement harvests both the host's internal and external storage
// paths out of the JNIEnv it's called with (the same information the
// host's own Java object already holds) and populates the write-once
// storage-path cache that the root package's Config defaults
// (StoragePath and ExternalStoragePath) read from, then returns JNI_FALSE
// without calling the original implementation.
package jnibridge

/*
#include <jni.h>
#include <stdlib.h>

static jstring mc_file_path(JNIEnv *env, jobject fileObj) {
	if (fileObj == NULL) {
		return NULL;
	}
	jclass fileCls = (*env)->GetObjectClass(env, fileObj);
	jmethodID getPath = (*env)->GetMethodID(env, fileCls, "getPath", "()Ljava/lang/String;");
	if (getPath == NULL) {
		return NULL;
	}
	return (jstring)(*env)->CallObjectMethod(env, fileObj, getPath);
}

static jstring mc_call_get_files_dir_path(JNIEnv *env, jobject activity) {
	jclass cls = (*env)->GetObjectClass(env, activity);
	if (cls == NULL) {
		return NULL;
	}
	jmethodID getFilesDir = (*env)->GetMethodID(env, cls, "getFilesDir", "()Ljava/io/File;");
	if (getFilesDir == NULL) {
		return NULL;
	}
	jobject fileObj = (*env)->CallObjectMethod(env, activity, getFilesDir);
	return mc_file_path(env, fileObj);
}

// mc_call_get_external_files_dir_path mirrors getFilesDir but calls
// Context.getExternalFilesDir(null), the host's external/shared-storage
// analogue, so external-storage installs can be harvested the same way
// internal ones are. Passing a null type argument asks for the root
// external files directory rather than one of its named subdirectories.
static jstring mc_call_get_external_files_dir_path(JNIEnv *env, jobject activity) {
	jclass cls = (*env)->GetObjectClass(env, activity);
	if (cls == NULL) {
		return NULL;
	}
	jmethodID getExternalFilesDir = (*env)->GetMethodID(env, cls, "getExternalFilesDir", "(Ljava/lang/String;)Ljava/io/File;");
	if (getExternalFilesDir == NULL) {
		return NULL;
	}
	jobject fileObj = (*env)->CallObjectMethod(env, activity, getExternalFilesDir, NULL);
	return mc_file_path(env, fileObj);
}

static const char *mc_jstring_to_cstr(JNIEnv *env, jstring s) {
	if (s == NULL) {
		return NULL;
	}
	return (*env)->GetStringUTFChars(env, s, NULL);
}

static void mc_release_cstr(JNIEnv *env, jstring s, const char *cstr) {
	if (s != NULL && cstr != NULL) {
		(*env)->ReleaseStringUTFChars(env, s, cstr);
	}
}
*/
import "C"

import "sync"

var (
	storagePathOnce     sync.Once
	storagePath         string
	externalStoragePath string
	storagePathReady    = make(chan struct{})
)

// StoragePath blocks until the JNI trampoline has harvested the host's
// internal storage path, then returns it. Safe to call from multiple
// goroutines; all callers observe the same value once it's set.
func StoragePath() string {
	<-storagePathReady
	return storagePath
}

// ExternalStoragePath blocks until the JNI trampoline has harvested the
// host's external storage path, then returns it. Empty if the host never
// exposed one (no external storage mounted, or the call failed), in which
// case callers should treat external storage as unavailable and stay on
// StoragePath.
func ExternalStoragePath() string {
	<-storagePathReady
	return externalStoragePath
}

// IsEduMode is the replacement installed over the host's exported
// isEduMode entry point. It harvests the storage path as a side effect on
// its first invocation, then always answers false, matching the host's
// own default (non-education-edition) behavior for every build this
// payload targets.
//
//export IsEduMode
func IsEduMode(env *C.JNIEnv, thiz C.jobject) C.jboolean {
	storagePathOnce.Do(func() {
		jpath := C.mc_call_get_files_dir_path(env, thiz)
		if jpath != nil {
			if cstr := C.mc_jstring_to_cstr(env, jpath); cstr != nil {
				storagePath = C.GoString(cstr)
				C.mc_release_cstr(env, jpath, cstr)
			}
		}
		if jext := C.mc_call_get_external_files_dir_path(env, thiz); jext != nil {
			if cstr := C.mc_jstring_to_cstr(env, jext); cstr != nil {
				externalStoragePath = C.GoString(cstr)
				C.mc_release_cstr(env, jext, cstr)
			}
		}
		close(storagePathReady)
	})
	return C.JNI_FALSE
}
