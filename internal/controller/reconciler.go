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

// Package controller implements the EphemeralAccelerationJob reconcile
// loop: the phase state machine, its periodic re-entry via the janitor,
// and the controller-runtime wiring that routes cluster events to it.
package controller

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/record"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/configuration"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/k8sclient"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/log"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/specs"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/validation"
)

// EphemeralAccelerationJobReconciler reconciles an EphemeralAccelerationJob object.
type EphemeralAccelerationJobReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// Cluster is the adapter used for every child pod/PVC read, write
	// and log tail. It is an injected collaborator so tests can build it
	// over a fake client and clientset without standing up a real cluster.
	Cluster *k8sclient.Client

	// Clock supplies the current time for volume-TTL arithmetic. It
	// defaults to the real wall clock; tests substitute a fake one to
	// drive the TTL boundary deterministically.
	Clock clock.PassiveClock

	// Config supplies the reconcile interval (and, in SetupWithManager,
	// the janitor's interval and schedule). Spec defaults are applied by
	// ApplyDefaults from configuration.Current, not from this field.
	Config *configuration.Data
}

// NewEphemeralAccelerationJobReconciler builds a reconciler wired to a
// manager's client, scheme and event recorder.
func NewEphemeralAccelerationJobReconciler(
	mgr ctrl.Manager,
	clientset kubernetes.Interface,
) *EphemeralAccelerationJobReconciler {
	return &EphemeralAccelerationJobReconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("ephemeral-gpu-job-operator"),
		Cluster:  k8sclient.New(mgr.GetClient(), clientset),
		Clock:    clock.RealClock{},
		Config:   configuration.Current,
	}
}

// +kubebuilder:rbac:groups=gpu.yourdomain.io,resources=ephemeralaccelerationjobs,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=gpu.yourdomain.io,resources=ephemeralaccelerationjobs/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups="",resources=pods/log,verbs=get
// +kubebuilder:rbac:groups="",resources=persistentvolumeclaims,verbs=get;list;watch;create;patch;delete
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile is the main reconciliation loop.
func (r *EphemeralAccelerationJobReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	contextLogger, ctx := log.SetupLoggerForContext(ctx)
	contextLogger = contextLogger.WithValues("job", req.NamespacedName, "requestID", uuid.NewString())

	var job apiv1alpha1.EphemeralAccelerationJob
	if err := r.Get(ctx, req.NamespacedName, &job); err != nil {
		if k8sclient.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	origStatus := job.Status.DeepCopy()
	job.Spec.ApplyDefaults()

	if err := validation.Validate(job.Spec); err != nil {
		if job.Status.Message != err.Error() {
			job.Status.Message = err.Error()
			if patchErr := r.patchStatus(ctx, &job, origStatus); patchErr != nil {
				return ctrl.Result{}, patchErr
			}
			r.Recorder.Eventf(&job, "Warning", "ValidationFailed", "%s", err.Error())
		}
		return ctrl.Result{}, nil
	}

	now := metav1.NewTime(r.Clock.Now().UTC())

	if job.Status.IsTerminal() {
		return r.reconcileTerminal(ctx, contextLogger, &job, origStatus)
	}

	if job.Status.Phase == "" || job.Status.Phase == apiv1alpha1.JobPhasePending {
		return r.reconcilePending(ctx, contextLogger, &job, origStatus, now)
	}

	return r.reconcileRunning(ctx, contextLogger, &job, origStatus, now)
}

func (r *EphemeralAccelerationJobReconciler) reconcilePending(
	ctx context.Context,
	contextLogger log.Logger,
	job *apiv1alpha1.EphemeralAccelerationJob,
	origStatus *apiv1alpha1.EphemeralAccelerationJobStatus,
	now metav1.Time,
) (ctrl.Result, error) {
	podName := specs.PodName(job.Name)

	if err := r.ensurePVC(ctx, job); err != nil {
		return ctrl.Result{}, fmt.Errorf("ensuring artifact volume: %w", err)
	}
	if err := r.ensurePod(ctx, job); err != nil {
		return ctrl.Result{}, fmt.Errorf("ensuring compute pod: %w", err)
	}

	plan := planPending(now, job.Status, podName)
	job.Status = plan.NewStatus

	contextLogger.Info("job entered Running", "pod", podName)
	r.Recorder.Eventf(job, "Normal", "Started", "created compute pod %s", podName)

	if err := r.patchStatus(ctx, job, origStatus); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{RequeueAfter: r.Config.ReconcileInterval}, nil
}

func (r *EphemeralAccelerationJobReconciler) reconcileRunning(
	ctx context.Context,
	contextLogger log.Logger,
	job *apiv1alpha1.EphemeralAccelerationJob,
	origStatus *apiv1alpha1.EphemeralAccelerationJobStatus,
	now metav1.Time,
) (ctrl.Result, error) {
	podName := specs.PodName(job.Name)

	pod, err := r.Cluster.GetPod(ctx, job.Namespace, podName)
	podFound := true
	if k8sclient.IsNotFound(err) {
		podFound = false
	} else if err != nil {
		return ctrl.Result{}, fmt.Errorf("reading compute pod: %w", err)
	}

	var projection k8sclient.PodStatusProjection
	if podFound {
		projection = k8sclient.ProjectPodStatus(pod)
	}

	plan := planRunning(now, job.Status, podFound, projection, job.Spec.Output.Path, job.Spec.EffectiveTTLSecondsAfterFinished())
	job.Status = plan.NewStatus

	switch plan.PodAction {
	case podDecisionEnsure:
		if err := r.ensurePVC(ctx, job); err != nil {
			return ctrl.Result{}, fmt.Errorf("ensuring artifact volume: %w", err)
		}
		if err := r.ensurePod(ctx, job); err != nil {
			return ctrl.Result{}, fmt.Errorf("recreating compute pod: %w", err)
		}
		contextLogger.Info("recreated missing compute pod", "pod", podName)
		r.Recorder.Eventf(job, "Warning", "PodMissing", "compute pod %s was missing, recreated", podName)
	case podDecisionDeleteOnSuccess:
		if err := r.Cluster.DeletePod(ctx, job.Namespace, podName); err != nil {
			return ctrl.Result{}, fmt.Errorf("deleting succeeded pod: %w", err)
		}
	case podDecisionFetchLogsAndDelete:
		logTail, logErr := r.Cluster.TailLogs(ctx, job.Namespace, podName)
		if logErr != nil {
			contextLogger.Error(logErr, "fetching failed pod logs", "pod", podName)
			logTail = fmt.Sprintf("pod failed; log tail unavailable: %s", logErr.Error())
		}
		if err := r.Cluster.DeletePod(ctx, job.Namespace, podName); err != nil {
			return ctrl.Result{}, fmt.Errorf("deleting failed pod: %w", err)
		}
		job.Status = finalizeFailed(now, job.Status, logTail)
		contextLogger.Info("job failed", "message", job.Status.Message)
		r.Recorder.Eventf(job, "Warning", "Failed", "compute pod failed: %s", logTail)
	}

	// A succeeded pod finalizes the job regardless of whether pod-TTL
	// retained or deleted it, so the success log/event fires independent
	// of plan.PodAction.
	if podFound && projection.Phase == corev1.PodSucceeded {
		contextLogger.Info("job succeeded", "artifactPath", job.Status.ArtifactPath, "podRetained", plan.PodAction != podDecisionDeleteOnSuccess)
		r.Recorder.Event(job, "Normal", "Succeeded", "compute pod completed successfully")
	}

	if statusUnchanged(job.Status, *origStatus) {
		return ctrl.Result{RequeueAfter: r.Config.ReconcileInterval}, nil
	}

	if err := r.patchStatus(ctx, job, origStatus); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{RequeueAfter: r.Config.ReconcileInterval}, nil
}

func (r *EphemeralAccelerationJobReconciler) reconcileTerminal(
	ctx context.Context,
	contextLogger log.Logger,
	job *apiv1alpha1.EphemeralAccelerationJob,
	origStatus *apiv1alpha1.EphemeralAccelerationJobStatus,
) (ctrl.Result, error) {
	ttl := job.Spec.EffectivePVCTTLSecondsAfterFinished()
	elapsed := volumeTTLElapsed(r.Clock, job.Status.FinishedAt, ttl)
	plan := planTerminal(elapsed)

	if plan.DeletePVC {
		pvcName := specs.PVCName(job.Name)
		if err := r.Cluster.DeletePVC(ctx, job.Namespace, pvcName); err != nil {
			return ctrl.Result{}, fmt.Errorf("reclaiming artifact volume: %w", err)
		}
		contextLogger.Info("reclaimed artifact volume", "claim", pvcName)
		r.Recorder.Eventf(job, "Normal", "VolumeReclaimed", "artifact volume %s reclaimed", pvcName)
	}

	return ctrl.Result{RequeueAfter: r.Config.ReconcileInterval}, nil
}

// ensurePVC implements the idempotent ensure discipline for the artifact
// volume claim: read, create on not-found, patch in an owner reference
// only when the existing claim has none, and treat a create-race as
// success.
func (r *EphemeralAccelerationJobReconciler) ensurePVC(ctx context.Context, job *apiv1alpha1.EphemeralAccelerationJob) error {
	existing, err := r.Cluster.GetPVC(ctx, job.Namespace, specs.PVCName(job.Name))
	if err == nil {
		if len(existing.OwnerReferences) == 0 {
			owner := metav1.OwnerReference{
				APIVersion:         apiv1alpha1.GroupVersion.String(),
				Kind:               apiv1alpha1.EphemeralAccelerationJobKind,
				Name:               job.Name,
				UID:                job.UID,
				Controller:         boolPtr(true),
				BlockOwnerDeletion: boolPtr(false),
			}
			return r.Cluster.PatchPVCOwnerReferences(ctx, existing, owner)
		}
		return nil
	}
	if !k8sclient.IsNotFound(err) {
		return err
	}

	pvc := specs.BuildPVC(job.Namespace, job.Name, job.UID, job.Spec)
	return r.Cluster.CreatePVC(ctx, pvc)
}

// ensurePod implements the idempotent ensure discipline for the compute
// pod: read, create on not-found, treat a create-race as success, no-op
// when already present.
func (r *EphemeralAccelerationJobReconciler) ensurePod(ctx context.Context, job *apiv1alpha1.EphemeralAccelerationJob) error {
	_, err := r.Cluster.GetPod(ctx, job.Namespace, specs.PodName(job.Name))
	if err == nil {
		return nil
	}
	if !k8sclient.IsNotFound(err) {
		return err
	}

	pod := specs.BuildPod(job.Namespace, job.Name, job.UID, job.Spec)
	return r.Cluster.CreatePod(ctx, pod)
}

func (r *EphemeralAccelerationJobReconciler) patchStatus(
	ctx context.Context,
	job *apiv1alpha1.EphemeralAccelerationJob,
	origStatus *apiv1alpha1.EphemeralAccelerationJobStatus,
) error {
	original := job.DeepCopy()
	original.Status = *origStatus
	return r.Status().Patch(ctx, job, client.MergeFrom(original))
}

func boolPtr(b bool) *bool { return &b }

// statusUnchanged compares two statuses by value, since the timestamp
// fields are pointers that differ in address across a DeepCopy even when
// the times they hold are identical.
func statusUnchanged(a, b apiv1alpha1.EphemeralAccelerationJobStatus) bool {
	if a.Phase != b.Phase || a.PodName != b.PodName || a.ArtifactPath != b.ArtifactPath || a.Message != b.Message {
		return false
	}
	if !timeEqual(a.StartedAt, b.StartedAt) {
		return false
	}
	if !timeEqual(a.FinishedAt, b.FinishedAt) {
		return false
	}
	return true
}

func timeEqual(a, b *metav1.Time) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.Time.Equal(b.Time)
}
