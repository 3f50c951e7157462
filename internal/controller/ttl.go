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

package controller

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"
)

// volumeTTLElapsed reports whether the volume-TTL has elapsed for a job
// that finished at finishedAt, given the current time as reported by c.
//
// finishedAt is parsed, converted to UTC exactly once, and subtracted from
// a UTC now. A missing finishedAt is treated as "not yet elapsed" rather
// than a crash, since the reconciler must never panic on an observed
// status it did not itself produce.
func volumeTTLElapsed(c clock.PassiveClock, finishedAt *metav1.Time, ttlSeconds int32) bool {
	if finishedAt == nil {
		return false
	}

	now := c.Now().UTC()
	finished := finishedAt.Time.UTC()
	elapsed := now.Sub(finished)

	return elapsed >= time.Duration(ttlSeconds)*time.Second
}
