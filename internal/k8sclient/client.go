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

// Package k8sclient is the thin adapter between the reconciler and the
// cluster API. It exposes read/create/patch/delete for pods and volume
// claims, a log tail, and a pod status projection, classifying failures
// into ErrNotFound versus everything else so the reconciler never has to
// import apimachinery's error package.
package k8sclient

import (
	"context"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrs "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// LogTailBytes is the amount of trailing log output read back for a failed
// pod's diagnostic message, matching the inference container's contract.
const LogTailBytes = 500

// zeroGracePeriod makes pod/claim teardown prompt rather than waiting out
// the default termination grace period.
var zeroGracePeriod = int64(0)

// Client adapts a controller-runtime client and a client-go clientset
// (needed for the log-tailing subresource, which controller-runtime's
// client does not expose) into the narrow surface the reconciler needs.
type Client struct {
	cli       client.Client
	clientset kubernetes.Interface
}

// New builds a Client from an already-configured controller-runtime
// client and client-go clientset.
func New(cli client.Client, clientset kubernetes.Interface) *Client {
	return &Client{cli: cli, clientset: clientset}
}

// GetPod reads a pod by namespace/name, returning ErrNotFound when absent.
func (c *Client) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error) {
	var pod corev1.Pod
	err := c.cli.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &pod)
	if err != nil {
		return nil, classify(err)
	}
	return &pod, nil
}

// GetPVC reads a volume claim by namespace/name, returning ErrNotFound when
// absent.
func (c *Client) GetPVC(ctx context.Context, namespace, name string) (*corev1.PersistentVolumeClaim, error) {
	var pvc corev1.PersistentVolumeClaim
	err := c.cli.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &pvc)
	if err != nil {
		return nil, classify(err)
	}
	return &pvc, nil
}

// CreatePod creates a pod, treating a create-race (already exists) as
// success so the caller's ensure-semantics stay idempotent.
func (c *Client) CreatePod(ctx context.Context, pod *corev1.Pod) error {
	err := c.cli.Create(ctx, pod)
	if err != nil && !apierrs.IsAlreadyExists(err) {
		return err
	}
	return nil
}

// CreatePVC creates a volume claim, treating a create-race as success.
func (c *Client) CreatePVC(ctx context.Context, pvc *corev1.PersistentVolumeClaim) error {
	err := c.cli.Create(ctx, pvc)
	if err != nil && !apierrs.IsAlreadyExists(err) {
		return err
	}
	return nil
}

// PatchPVCOwnerReferences adds an owner reference to a claim that has
// none, leaving a claim with existing owner references untouched. This is
// the only mutation ever applied to an existing claim's metadata.
func (c *Client) PatchPVCOwnerReferences(ctx context.Context, pvc *corev1.PersistentVolumeClaim, owner metav1.OwnerReference) error {
	if len(pvc.OwnerReferences) > 0 {
		return nil
	}
	original := pvc.DeepCopy()
	pvc.OwnerReferences = []metav1.OwnerReference{owner}
	return c.cli.Patch(ctx, pvc, client.MergeFrom(original))
}

// DeletePod deletes a pod with zero grace period, treating not-found as
// success.
func (c *Client) DeletePod(ctx context.Context, namespace, name string) error {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	err := c.cli.Delete(ctx, pod, &client.DeleteOptions{GracePeriodSeconds: &zeroGracePeriod})
	if err != nil && !apierrs.IsNotFound(err) {
		return err
	}
	return nil
}

// DeletePVC deletes a volume claim with zero grace period, treating
// not-found as success.
func (c *Client) DeletePVC(ctx context.Context, namespace, name string) error {
	pvc := &corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	err := c.cli.Delete(ctx, pvc, &client.DeleteOptions{GracePeriodSeconds: &zeroGracePeriod})
	if err != nil && !apierrs.IsNotFound(err) {
		return err
	}
	return nil
}

// TailLogs reads a pod's full combined stdout/stderr via the log
// subresource reached through client-go (controller-runtime's client does
// not expose it) and returns its last LogTailBytes bytes.
func (c *Client) TailLogs(ctx context.Context, namespace, podName string) (string, error) {
	req := c.clientset.CoreV1().Pods(namespace).GetLogs(podName, &corev1.PodLogOptions{})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", classify(err)
	}
	defer stream.Close()

	raw, err := io.ReadAll(stream)
	if err != nil {
		return "", err
	}

	return truncateTail(string(raw), LogTailBytes), nil
}

// truncateTail returns at most maxBytes of the tail end of s.
func truncateTail(s string, maxBytes int) string {
	s = strings.TrimRight(s, "\n")
	if len(s) <= maxBytes {
		return s
	}
	return s[len(s)-maxBytes:]
}
