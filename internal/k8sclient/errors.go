/*
Copyright The Ephemeral Acceleration Job Operator Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package k8sclient

import (
	"errors"

	apierrs "k8s.io/apimachinery/pkg/api/errors"
)

// ErrNotFound is the sentinel returned by the adapter's read methods
// (GetPod, GetPVC, TailLogs) in place of a raw apierrors.IsNotFound check,
// so call sites never need to import apimachinery's error package to
// branch on it. The delete methods treat not-found as success; the create
// and patch methods return other API errors unclassified.
var ErrNotFound = errors.New("object not found")

// classify turns a raw API error into ErrNotFound when appropriate,
// leaving every other error (including nil) untouched so it propagates as
// a transient failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if apierrs.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
