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

// Package specs builds the declarative manifests for a job's children.
// Every function here is pure: no side effects, no cluster calls.
package specs

import "fmt"

// PodName returns the deterministic name of the compute pod for a job.
// This naming is a load-bearing invariant: the reconciler never stores the
// pod name anywhere but status, and re-derives it on every invocation.
func PodName(jobName string) string {
	return fmt.Sprintf("ephemeralaccelerationjob-%s", jobName)
}

// PVCName returns the deterministic name of the artifact volume claim for
// a job.
func PVCName(jobName string) string {
	return fmt.Sprintf("artifacts-%s", jobName)
}

const (
	// AppLabel is the constant "app" label value carried by every compute pod.
	AppLabel = "gpu-job"

	// JobNameLabel is the label key carrying the owning job's name.
	JobNameLabel = "ephemeralaccelerationjob"

	// artifactMountPath is the directory, inside the compute pod, where the
	// artifact volume is mounted. Input and output paths are expected to
	// live underneath it.
	artifactMountPath = "/artifacts"
)

// PodLabels returns the labels every compute pod carries.
func PodLabels(jobName string) map[string]string {
	return map[string]string{
		"app":        AppLabel,
		JobNameLabel: jobName,
	}
}
