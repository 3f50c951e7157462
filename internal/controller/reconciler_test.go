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
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	fakeclientset "k8s.io/client-go/kubernetes/fake"
	testingclock "k8s.io/utils/clock/testing"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/configuration"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/k8sclient"
)

func newTestScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	Expect(corev1.AddToScheme(scheme)).To(Succeed())
	Expect(apiv1alpha1.AddToScheme(scheme)).To(Succeed())
	return scheme
}

func newTestReconciler(cli client.Client, now time.Time) *EphemeralAccelerationJobReconciler {
	return &EphemeralAccelerationJobReconciler{
		Client:   cli,
		Recorder: record(),
		Cluster:  k8sclient.New(cli, fakeclientset.NewSimpleClientset()),
		Clock:    testingclock.NewFakePassiveClock(now),
		Config:   configuration.NewConfiguration(),
	}
}

func record() *fakeRecorder { return &fakeRecorder{} }

// fakeRecorder discards every event; these tests assert on status and
// children, not on the event stream.
type fakeRecorder struct{}

func (f *fakeRecorder) Event(object runtime.Object, eventtype, reason, message string) {}
func (f *fakeRecorder) Eventf(object runtime.Object, eventtype, reason, messageFmt string, args ...interface{}) {
}
func (f *fakeRecorder) AnnotatedEventf(
	object runtime.Object, annotations map[string]string, eventtype, reason, messageFmt string, args ...interface{},
) {
}

func newJob(name string, spec apiv1alpha1.EphemeralAccelerationJobSpec) *apiv1alpha1.EphemeralAccelerationJob {
	return &apiv1alpha1.EphemeralAccelerationJob{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			UID:       types.UID("uid-" + name),
		},
		Spec: spec,
	}
}

func baseSpec() apiv1alpha1.EphemeralAccelerationJobSpec {
	return apiv1alpha1.EphemeralAccelerationJobSpec{
		Model:     apiv1alpha1.ModelResNet50,
		Input:     apiv1alpha1.ArtifactLocation{Path: "/artifacts/input.jpg"},
		Output:    apiv1alpha1.ArtifactLocation{Path: "/artifacts/output.json"},
		Resources: apiv1alpha1.JobResources{GPU: 1},
	}
}

var _ = Describe("Reconcile seed scenarios", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("scenario 1: happy path to Succeeded with immediate pod reclamation", func() {
		spec := baseSpec()
		spec.PVCTTLSecondsAfterFinished = int32Ptr(3600)
		spec.TTLSecondsAfterFinished = int32Ptr(0)
		job := newJob("j1", spec)

		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var claim corev1.PersistentVolumeClaim
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j1"}, &claim)).To(Succeed())
		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j1"}, &pod)).To(Succeed())

		var refreshed apiv1alpha1.EphemeralAccelerationJob
		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(Equal(apiv1alpha1.JobPhaseRunning))

		pod.Status.Phase = corev1.PodSucceeded
		Expect(cli.Status().Update(ctx, &pod)).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(Equal(apiv1alpha1.JobPhaseSucceeded))
		Expect(refreshed.Status.FinishedAt).ToNot(BeNil())

		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j1"}, &pod)
		Expect(err).To(HaveOccurred())

		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j1"}, &claim)).To(Succeed())
	})

	It("finalizes the job as Succeeded and retains the pod when pod-TTL is positive", func() {
		spec := baseSpec()
		spec.PVCTTLSecondsAfterFinished = int32Ptr(3600)
		spec.TTLSecondsAfterFinished = int32Ptr(300)
		job := newJob("j1b", spec)

		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j1b"}, &pod)).To(Succeed())
		pod.Status.Phase = corev1.PodSucceeded
		Expect(cli.Status().Update(ctx, &pod)).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var refreshed apiv1alpha1.EphemeralAccelerationJob
		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(Equal(apiv1alpha1.JobPhaseSucceeded))
		Expect(refreshed.Status.FinishedAt).ToNot(BeNil())

		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j1b"}, &pod)).To(Succeed())
	})

	It("scenario 2: pod failure records a message ending with the stderr excerpt", func() {
		job := newJob("j2", baseSpec())
		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j2"}, &pod)).To(Succeed())
		pod.Status.Phase = corev1.PodFailed
		Expect(cli.Status().Update(ctx, &pod)).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var refreshed apiv1alpha1.EphemeralAccelerationJob
		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(Equal(apiv1alpha1.JobPhaseFailed))
		// The fake clientset's log stream always returns "fake logs".
		Expect(refreshed.Status.Message).To(HaveSuffix("fake logs"))

		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j2"}, &pod)
		Expect(err).To(HaveOccurred())
	})

	It("scenario 3: pod disappearing mid-run is recreated with the same name and owner", func() {
		job := newJob("j3", baseSpec())
		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		Expect(cli.Delete(ctx, &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "ephemeralaccelerationjob-j3"},
		})).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j3"}, &pod)).To(Succeed())
		Expect(pod.OwnerReferences).To(HaveLen(1))
		Expect(pod.OwnerReferences[0].UID).To(BeEquivalentTo("uid-j3"))

		var refreshed apiv1alpha1.EphemeralAccelerationJob
		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(Equal(apiv1alpha1.JobPhaseRunning))
	})

	It("scenario 4: the volume claim is reclaimed at t=61 but not at t=59 for a 60s TTL", func() {
		spec := baseSpec()
		spec.PVCTTLSecondsAfterFinished = int32Ptr(60)
		spec.TTLSecondsAfterFinished = int32Ptr(0)
		job := newJob("j4", spec)

		start := time.Now()
		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, start)

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j4"}, &pod)).To(Succeed())
		pod.Status.Phase = corev1.PodSucceeded
		Expect(cli.Status().Update(ctx, &pod)).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		fakeClock := r.Clock.(*testingclock.FakePassiveClock)

		fakeClock.SetTime(start.Add(59 * time.Second))
		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var claim corev1.PersistentVolumeClaim
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j4"}, &claim)).To(Succeed())

		fakeClock.SetTime(start.Add(61 * time.Second))
		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j4"}, &claim)
		Expect(err).To(HaveOccurred())

		fakeClock.SetTime(start.Add(2 * time.Hour))
		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())
	})

	It("scenario 5: a zero volume-TTL reclaims the claim on the tick after the transition", func() {
		spec := baseSpec()
		spec.PVCTTLSecondsAfterFinished = int32Ptr(0)
		job := newJob("j5", spec)

		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var pod corev1.Pod
		Expect(cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j5"}, &pod)).To(Succeed())
		pod.Status.Phase = corev1.PodSucceeded
		Expect(cli.Status().Update(ctx, &pod)).To(Succeed())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		_, err = r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var claim corev1.PersistentVolumeClaim
		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j5"}, &claim)
		Expect(err).To(HaveOccurred())
	})

	It("scenario 6: an unknown model is permanently rejected with no children created", func() {
		spec := baseSpec()
		spec.Model = apiv1alpha1.ModelName("llama")
		job := newJob("j6", spec)

		cli := fake.NewClientBuilder().
			WithScheme(newTestScheme()).
			WithStatusSubresource(&apiv1alpha1.EphemeralAccelerationJob{}).
			WithObjects(job).
			Build()
		r := newTestReconciler(cli, time.Now())

		_, err := r.Reconcile(ctx, requestFor(job))
		Expect(err).ToNot(HaveOccurred())

		var claim corev1.PersistentVolumeClaim
		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "artifacts-j6"}, &claim)
		Expect(err).To(HaveOccurred())

		var pod corev1.Pod
		err = cli.Get(ctx, client.ObjectKey{Namespace: "default", Name: "ephemeralaccelerationjob-j6"}, &pod)
		Expect(err).To(HaveOccurred())

		var refreshed apiv1alpha1.EphemeralAccelerationJob
		Expect(cli.Get(ctx, requestFor(job).NamespacedName, &refreshed)).To(Succeed())
		Expect(refreshed.Status.Phase).To(BeEmpty())
		Expect(refreshed.Status.Message).ToNot(BeEmpty())
	})
})

func requestFor(job *apiv1alpha1.EphemeralAccelerationJob) ctrl.Request {
	return ctrl.Request{NamespacedName: client.ObjectKeyFromObject(job)}
}

func int32Ptr(v int32) *int32 { return &v }
