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
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
)

const defaultPVCSize = "1Gi"
const defaultStorageClass = "local-path"

// BuildPVC renders the artifact volume claim manifest for a job. uid may be
// empty when the job's identity is not yet known; in that case no owner
// reference is attached.
func BuildPVC(
	namespace, jobName string,
	uid types.UID,
	spec apiv1alpha1.EphemeralAccelerationJobSpec,
) *corev1.PersistentVolumeClaim {
	storageClass := spec.StorageClass
	if storageClass == "" {
		storageClass = defaultStorageClass
	}

	size := spec.PVCSize
	if size == "" {
		size = defaultPVCSize
	}

	pvc := &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:      PVCName(jobName),
			Namespace: namespace,
			Labels:    PodLabels(jobName),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{
				corev1.ReadWriteOnce,
			},
			StorageClassName: &storageClass,
			Resources: corev1.ResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(size),
				},
			},
		},
	}

	if uid != "" {
		pvc.OwnerReferences = []metav1.OwnerReference{
			ownerReference(jobName, uid, false),
		}
	}

	return pvc
}
