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

// Package controller implements the command used to start the operator.
package controller

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	apiv1alpha1 "github.com/yourdomain/ephemeral-gpu-job-operator/api/v1alpha1"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/configuration"
	operatorcontroller "github.com/yourdomain/ephemeral-gpu-job-operator/internal/controller"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/log"
)

// LeaderElectionID identifies this operator's leader election lease.
const LeaderElectionID = "ephemeral-gpu-job-operator-lease.gpu.yourdomain.io"

var scheme = buildScheme()

func buildScheme() *runtime.Scheme {
	s := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(s))
	utilruntime.Must(apiv1alpha1.AddToScheme(s))
	return s
}

// leaderElectionConfiguration carries the leader-election tuning passed
// down from the CLI flags.
type leaderElectionConfiguration struct {
	enable        bool
	leaseDuration time.Duration
	renewDeadline time.Duration
}

// RunController is the main procedure of the operator: it builds a
// controller-runtime manager, wires the reconciler and its janitor into
// it, and blocks until the process receives a shutdown signal.
func RunController(metricsAddr string, leaderConfig leaderElectionConfiguration) error {
	contextLogger := log.FromContext(context.Background()).WithName("setup")

	contextLogger.Info("starting ephemeral GPU job operator")

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                        scheme,
		Metrics:                       metricsserver.Options{BindAddress: metricsAddr},
		LeaderElection:                leaderConfig.enable,
		LeaseDuration:                 &leaderConfig.leaseDuration,
		RenewDeadline:                 &leaderConfig.renewDeadline,
		LeaderElectionID:              LeaderElectionID,
		LeaderElectionReleaseOnCancel: true,
	})
	if err != nil {
		contextLogger.Error(err, "unable to start manager")
		return err
	}

	clientset, err := kubernetes.NewForConfig(mgr.GetConfig())
	if err != nil {
		contextLogger.Error(err, "unable to create Kubernetes clientset")
		return err
	}

	reconciler := operatorcontroller.NewEphemeralAccelerationJobReconciler(mgr, clientset)
	reconciler.Config = configuration.Current
	if err := reconciler.SetupWithManager(mgr, clientset); err != nil {
		contextLogger.Error(err, "unable to create controller", "controller", "EphemeralAccelerationJob")
		return err
	}

	contextLogger.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		contextLogger.Error(err, "problem running manager")
		return err
	}

	return nil
}
