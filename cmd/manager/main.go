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

/*
The manager command is the entrypoint of the ephemeral GPU job operator.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/cmd/manager/controller"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/cmd/manager/show"
	"github.com/yourdomain/ephemeral-gpu-job-operator/internal/log"
)

func main() {
	cmd := &cobra.Command{
		Use:          "manager [cmd]",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetupLogger()
		},
	}

	log.Flags(cmd.PersistentFlags())

	cmd.AddCommand(controller.NewCmd())
	cmd.AddCommand(show.NewCmd())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
