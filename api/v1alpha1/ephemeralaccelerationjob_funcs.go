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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/configuration"
)

// IsTerminal returns true if the phase will never transition again.
func (s *EphemeralAccelerationJobStatus) IsTerminal() bool {
	return s.Phase == JobPhaseSucceeded || s.Phase == JobPhaseFailed
}

// SetAsRunning moves the status into Running and records podName.
// startedAt is recorded only when the job leaves Pending; calling it again
// while already Running keeps the existing startedAt.
func (s *EphemeralAccelerationJobStatus) SetAsRunning(podName string, now metav1.Time) {
	if s.Phase == "" || s.Phase == JobPhasePending {
		s.StartedAt = &now
	}
	s.Phase = JobPhaseRunning
	s.PodName = podName
}

// SetAsSucceeded marks the job Succeeded, recording finishedAt and the
// artifact output path.
func (s *EphemeralAccelerationJobStatus) SetAsSucceeded(artifactPath string, now metav1.Time) {
	s.Phase = JobPhaseSucceeded
	s.FinishedAt = &now
	s.ArtifactPath = artifactPath
}

// SetAsFailed marks the job Failed, recording finishedAt and a diagnostic
// message (typically a truncated log tail).
func (s *EphemeralAccelerationJobStatus) SetAsFailed(message string, now metav1.Time) {
	s.Phase = JobPhaseFailed
	s.FinishedAt = &now
	s.Message = message
}

// EffectiveTTLSecondsAfterFinished returns the pod-TTL, applying the
// operator-configured default when unset.
func (spec *EphemeralAccelerationJobSpec) EffectiveTTLSecondsAfterFinished() int32 {
	if spec.TTLSecondsAfterFinished == nil {
		return configuration.Current.DefaultTTLSecondsAfterFinished
	}
	return *spec.TTLSecondsAfterFinished
}

// EffectivePVCTTLSecondsAfterFinished returns the volume-TTL, applying the
// operator-configured default when unset.
func (spec *EphemeralAccelerationJobSpec) EffectivePVCTTLSecondsAfterFinished() int32 {
	if spec.PVCTTLSecondsAfterFinished == nil {
		return configuration.Current.DefaultPVCTTLSecondsAfterFinished
	}
	return *spec.PVCTTLSecondsAfterFinished
}

// ApplyDefaults fills in any spec field the user left unset with the
// operator's configured default, preserving explicit user settings. It
// mirrors the defaulting webhook pattern of applying configuration.Current
// to an object before it is acted upon, adapted here for a controller that
// runs without an admission webhook.
func (spec *EphemeralAccelerationJobSpec) ApplyDefaults() {
	if spec.Image == "" {
		spec.Image = configuration.Current.DefaultImage
	}
	if spec.StorageClass == "" {
		spec.StorageClass = configuration.Current.DefaultStorageClass
	}
	if spec.PVCSize == "" {
		spec.PVCSize = configuration.Current.DefaultPVCSize
	}
	if spec.TTLSecondsAfterFinished == nil {
		ttl := configuration.Current.DefaultTTLSecondsAfterFinished
		spec.TTLSecondsAfterFinished = &ttl
	}
	if spec.PVCTTLSecondsAfterFinished == nil {
		pvcTTL := configuration.Current.DefaultPVCTTLSecondsAfterFinished
		spec.PVCTTLSecondsAfterFinished = &pvcTTL
	}
}
