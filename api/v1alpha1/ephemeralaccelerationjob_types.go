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
)

// ModelName is the enumerated set of inference models this operator knows
// how to run.
type ModelName string

const (
	// ModelResNet50 is the resnet50 image classification model
	ModelResNet50 ModelName = "resnet50"

	// ModelMobileNetV3Small is the mobilenet_v3_small image classification model
	ModelMobileNetV3Small ModelName = "mobilenet_v3_small"
)

// JobPhase is the coarse observed state of an EphemeralAccelerationJob
type JobPhase string

const (
	// JobPhasePending means the controller has not yet created the job's children
	JobPhasePending JobPhase = "Pending"

	// JobPhaseRunning means the compute pod has been created and is being observed
	JobPhaseRunning JobPhase = "Running"

	// JobPhaseSucceeded means the compute pod exited zero
	JobPhaseSucceeded JobPhase = "Succeeded"

	// JobPhaseFailed means the compute pod exited non-zero. A rejected spec
	// does not change the phase; the rejection is reported in the message.
	JobPhaseFailed JobPhase = "Failed"
)

// ArtifactLocation is a path inside the job's artifact volume
type ArtifactLocation struct {
	// Path is an absolute file path inside the artifact volume's mount point
	Path string `json:"path"`
}

// JobResources declares the accelerator resources a job requires
type JobResources struct {
	// GPU is the number of GPU devices requested for the compute pod.
	// Must be a positive integer.
	GPU int32 `json:"gpu"`
}

// EphemeralAccelerationJobSpec defines the desired state of an
// EphemeralAccelerationJob
type EphemeralAccelerationJobSpec struct {
	// Model is the enumerated inference model to run.
	// +kubebuilder:validation:Enum=resnet50;mobilenet_v3_small
	Model ModelName `json:"model"`

	// Input is the location, inside the artifact volume, of the input file.
	Input ArtifactLocation `json:"input"`

	// Output is the location, inside the artifact volume, where the
	// inference container must write its output.
	Output ArtifactLocation `json:"output"`

	// Resources declares the GPU devices requested for the compute pod.
	Resources JobResources `json:"resources"`

	// Image is the container image reference for the inference workload.
	// +optional
	Image string `json:"image,omitempty"`

	// Command overrides the default argument vector derived from
	// (model, input.path, output.path). When empty, the controller derives
	// `--model <model> --input <input.path> --output <output.path>`.
	// +optional
	Command []string `json:"command,omitempty"`

	// StorageClass is the storage class of the artifact volume.
	// +optional
	StorageClass string `json:"storageClass,omitempty"`

	// PVCSize is the requested size of the artifact volume, e.g. "1Gi".
	// +optional
	PVCSize string `json:"pvcSize,omitempty"`

	// TTLSecondsAfterFinished is the number of seconds to retain the compute
	// pod after the job reaches a terminal phase. Zero means delete the pod
	// immediately on completion.
	// +optional
	// +kubebuilder:validation:Minimum=0
	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`

	// PVCTTLSecondsAfterFinished is the number of seconds to retain the
	// artifact volume after the job reaches a terminal phase. Zero means
	// delete the volume claim on the first reconcile after the job becomes
	// terminal.
	// +optional
	// +kubebuilder:validation:Minimum=0
	PVCTTLSecondsAfterFinished *int32 `json:"pvcTTLSecondsAfterFinished,omitempty"`
}

// EphemeralAccelerationJobStatus defines the observed state of an
// EphemeralAccelerationJob. Every field here is controller-owned.
type EphemeralAccelerationJobStatus struct {
	// Phase is the coarse state of the job.
	// +optional
	Phase JobPhase `json:"phase,omitempty"`

	// StartedAt is the time the job entered the Running phase, in UTC.
	// +optional
	StartedAt *metav1.Time `json:"startedAt,omitempty"`

	// FinishedAt is the time the job entered a terminal phase, in UTC.
	// +optional
	FinishedAt *metav1.Time `json:"finishedAt,omitempty"`

	// PodName is the name of the compute pod created for this job.
	// +optional
	PodName string `json:"podName,omitempty"`

	// ArtifactPath is the output path written by the inference container,
	// once the job has succeeded.
	// +optional
	ArtifactPath string `json:"artifactPath,omitempty"`

	// Message is a human readable diagnostic, including a truncated log
	// tail when the job has failed.
	// +optional
	Message string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=ephemeralaccelerationjobs,scope=Namespaced,shortName=eaj
// +kubebuilder:printcolumn:name="Model",type="string",JSONPath=".spec.model"
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="Pod",type="string",JSONPath=".status.podName"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// EphemeralAccelerationJob is the Schema for the ephemeralaccelerationjobs API
type EphemeralAccelerationJob struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// Specification of the desired job.
	Spec EphemeralAccelerationJobSpec `json:"spec"`

	// Most recently observed status of the job. Populated by the
	// controller. Read-only.
	// +optional
	Status EphemeralAccelerationJobStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// EphemeralAccelerationJobList contains a list of EphemeralAccelerationJob
type EphemeralAccelerationJobList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []EphemeralAccelerationJob `json:"items"`
}

func init() {
	SchemeBuilder.Register(&EphemeralAccelerationJob{}, &EphemeralAccelerationJobList{})
}
