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
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/source"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/k8sclient"
)

// SetupWithManager wires the reconciler into mgr: it watches
// EphemeralAccelerationJob create/update events and owned pod/PVC changes
// (delete is deliberately not handled — owner references reclaim the
// pod, and the claim is deliberately not blocked by a job delete), plus
// the janitor's periodic sweep delivered over a source.Channel.
func (r *EphemeralAccelerationJobReconciler) SetupWithManager(mgr ctrl.Manager, clientset kubernetes.Interface) error {
	if r.Cluster == nil {
		r.Cluster = k8sclient.New(mgr.GetClient(), clientset)
	}

	janitor := NewJanitor(mgr.GetClient(), r.Config.ReconcileInterval, r.Config.JanitorSchedule)
	if err := mgr.Add(janitor); err != nil {
		return err
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&apiv1alpha1.EphemeralAccelerationJob{}).
		Owns(&corev1.Pod{}).
		Owns(&corev1.PersistentVolumeClaim{}).
		Watches(
			&source.Channel{Source: janitor.Events},
			&handler.EnqueueRequestForObject{},
		).
		WithOptions(controller.Options{MaxConcurrentReconciles: 5}).
		Complete(r)
}
