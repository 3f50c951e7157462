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

// Package show implements the show command, a read-only table listing of
// every EphemeralAccelerationJob the caller can see.
package show

import (
	"context"
	"fmt"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
)

// NewCmd creates the cobra command that lists every EphemeralAccelerationJob
// visible to the caller's kubeconfig.
func NewCmd() *cobra.Command {
	var namespace string
	var outputYAML bool

	cmd := cobra.Command{
		Use:           "show [flags]",
		Short:         "List EphemeralAccelerationJobs and their observed phase",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), namespace, outputYAML)
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Only list jobs in this namespace (default: all namespaces)")
	cmd.Flags().BoolVarP(&outputYAML, "output-yaml", "o", false, "Print the full job list as YAML instead of a table")

	return &cmd
}

func runShow(ctx context.Context, namespace string, outputYAML bool) error {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return err
	}
	if err := apiv1alpha1.AddToScheme(scheme); err != nil {
		return err
	}

	cfg, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("loading kubeconfig: %w", err)
	}

	cli, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	var jobs apiv1alpha1.EphemeralAccelerationJobList
	listOpts := []client.ListOption{}
	if namespace != "" {
		listOpts = append(listOpts, client.InNamespace(namespace))
	}
	if err := cli.List(ctx, &jobs, listOpts...); err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if len(jobs.Items) == 0 {
		fmt.Println("No EphemeralAccelerationJobs found")
		return nil
	}

	if outputYAML {
		out, err := yaml.Marshal(jobs.Items)
		if err != nil {
			return fmt.Errorf("marshaling jobs to YAML: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	t := tabby.New()
	t.AddHeader("NAMESPACE", "NAME", "PHASE", "POD", "ARTIFACT", "AGE")
	for _, job := range jobs.Items {
		t.AddLine(
			job.Namespace,
			job.Name,
			phaseOrPending(job.Status.Phase),
			valueOrDash(job.Status.PodName),
			valueOrDash(job.Status.ArtifactPath),
			age(job.CreationTimestamp.Time),
		)
	}
	t.Print()

	return nil
}

func phaseOrPending(phase apiv1alpha1.JobPhase) string {
	if phase == "" {
		return string(apiv1alpha1.JobPhasePending)
	}
	return string(phase)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func age(createdAt time.Time) string {
	if createdAt.IsZero() {
		return "-"
	}
	return time.Since(createdAt).Round(time.Second).String()
}
