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

package specs

import (
	"path"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
)

// gpuResourceName is the extended resource name the cluster's device
// plugin registers GPUs under.
const gpuResourceName = corev1.ResourceName("nvidia.com/gpu")

// containerName is the name of the sole container in the compute pod.
const containerName = "inference"

// BuildPod renders the compute pod manifest for a job. uid may be empty
// when the job's identity is not yet known to the caller; in that case no
// owner reference is attached and the caller is expected to set one before
// creating the object.
func BuildPod(
	namespace, jobName string,
	uid types.UID,
	spec apiv1alpha1.EphemeralAccelerationJobSpec,
) *corev1.Pod {
	gpuQuantity := resource.NewQuantity(int64(spec.Resources.GPU), resource.DecimalSI)
	mountPath := artifactDir(spec.Input.Path, spec.Output.Path)
	command, args := effectiveCommandAndArgs(spec)

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      PodName(jobName),
			Namespace: namespace,
			Labels:    PodLabels(jobName),
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    containerName,
					Image:   effectiveImage(spec.Image),
					Command: command,
					Args:    args,
					Resources: corev1.ResourceRequirements{
						Limits: corev1.ResourceList{
							gpuResourceName: *gpuQuantity,
						},
						Requests: corev1.ResourceList{
							gpuResourceName: *gpuQuantity,
						},
					},
					VolumeMounts: []corev1.VolumeMount{
						{
							Name:      "artifacts",
							MountPath: mountPath,
						},
					},
				},
			},
			Volumes: []corev1.Volume{
				{
					Name: "artifacts",
					VolumeSource: corev1.VolumeSource{
						PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
							ClaimName: PVCName(jobName),
						},
					},
				},
			},
		},
	}

	if uid != "" {
		pod.OwnerReferences = []metav1.OwnerReference{
			ownerReference(jobName, uid, true),
		}
	}

	return pod
}

// effectiveImage applies the controller default when the spec omits one.
func effectiveImage(image string) string {
	if image != "" {
		return image
	}
	return "gpu-job-inference:latest"
}

// effectiveCommandAndArgs derives the container's entrypoint override and
// argument vector. When the spec supplies a command override it replaces
// the image's entrypoint entirely (command set, args empty). Otherwise the
// image's own entrypoint is left untouched and the derived
// `--model/--input/--output` vector is passed as args, matching the
// inference container's documented CLI contract.
func effectiveCommandAndArgs(spec apiv1alpha1.EphemeralAccelerationJobSpec) (command, args []string) {
	if len(spec.Command) > 0 {
		return spec.Command, nil
	}
	return nil, []string{
		"--model", string(spec.Model),
		"--input", spec.Input.Path,
		"--output", spec.Output.Path,
	}
}

// artifactDir returns the directory that should be mounted for a job,
// derived from the common parent of the input and output paths. It falls
// back to the conventional /artifacts mount when the two paths disagree.
func artifactDir(input, output string) string {
	inputDir := path.Dir(input)
	if inputDir == path.Dir(output) {
		return inputDir
	}
	return artifactMountPath
}

func ownerReference(jobName string, uid types.UID, blockOwnerDeletion bool) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion:         apiv1alpha1.GroupVersion.String(),
		Kind:               apiv1alpha1.EphemeralAccelerationJobKind,
		Name:               jobName,
		UID:                uid,
		Controller:         ptr.To(true),
		BlockOwnerDeletion: ptr.To(blockOwnerDeletion),
	}
}
