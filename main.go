package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/YaleSpinup/ecs-taskdef-render/actions"
	"github.com/YaleSpinup/ecs-taskdef-render/api"
	"github.com/YaleSpinup/ecs-taskdef-render/common"

	log "github.com/sirupsen/logrus"
)

var (
	// Version is the main version number
	Version = "0.0.0"

	// VersionPrerelease is a prerelease marker
	VersionPrerelease = ""

	// buildstamp is the timestamp the binary was built, it should be set at buildtime with ldflags
	buildstamp = "No BuildStamp Provided"

	// githash is the git sha of the built binary, it should be set at buildtime with ldflags
	githash = "No Git Commit Provided"

	configFileName = flag.String("config", "config/config.json", "Configuration file.")
	serve          = flag.Bool("serve", false, "Run the render service instead of the action.")
	version        = flag.Bool("version", false, "Display version information and exit.")
)

func main() {
	flag.Parse()
	if *version {
		vers()
	}

	if *serve {
		server()
		return
	}

	runner := actions.NewRunner()
	log.SetOutput(runner.Out)
	log.SetFormatter(&actions.Formatter{})
	if runner.Debug() {
		log.SetLevel(log.DebugLevel)
	}

	if err := runAction(context.Background(), runner); err != nil {
		runner.SetFailed(err.Error())
	}

	os.Exit(runner.ExitCode())
}

func server() {
	log.Infof("Starting ecs-taskdef-render version %s%s", Version, VersionPrerelease)

	configFile, err := os.Open(*configFileName)
	if err != nil {
		log.Fatalln("Unable to open config file", err)
	}

	r := bufio.NewReader(configFile)
	config, err := common.ReadConfig(r)
	if err != nil {
		log.Fatalf("Unable to read configuration from %s.  %+v", *configFileName, err)
	}

	config.Version = common.Version{
		Version:           Version,
		VersionPrerelease: VersionPrerelease,
		BuildStamp:        buildstamp,
		GitHash:           githash,
	}

	log.SetLevel(config.Level())

	log.Debugf("loaded configuration for %d accounts", len(config.Accounts))

	if err := api.NewServer(config); err != nil {
		log.Fatal(err)
	}
}

func vers() {
	fmt.Printf("ecs-taskdef-render Version: %s%s\n", Version, VersionPrerelease)
	os.Exit(0)
}
