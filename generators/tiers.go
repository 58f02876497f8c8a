package generators

import (
	"os"

	"github.com/reusee/rlm/cmds"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/vars"
)

var (
	rootModelFlag = cmds.Var[string]("-root-model")
	leafModelFlag = cmds.Var[string]("-leaf-model")
)

const (
	FallbackRootModel = "openai/gpt-5-mini"
	FallbackLeafModel = "openai/gpt-4o-mini"
)

type RootModelName string

func (Module) RootModelName(
	loader configs.Loader,
	logger logs.Logger,
) (ret RootModelName) {
	defer func() {
		logger.Info("root model", "name", ret)
	}()
	return vars.FirstNonZero(
		RootModelName(*rootModelFlag),
		configs.First[RootModelName](loader, "root_model"),
		RootModelName(os.Getenv("ROOT_MODEL")),
		FallbackRootModel,
	)
}

type LeafModelName string

func (Module) LeafModelName(
	loader configs.Loader,
	logger logs.Logger,
) (ret LeafModelName) {
	defer func() {
		logger.Info("leaf model", "name", ret)
	}()
	return vars.FirstNonZero(
		LeafModelName(*leafModelFlag),
		configs.First[LeafModelName](loader, "leaf_model"),
		LeafModelName(os.Getenv("LEAF_MODEL")),
		FallbackLeafModel,
	)
}

// RootGenerator is the high-capability tier that writes strategies.
type RootGenerator Generator

func (Module) RootGenerator(
	newOpenRouter NewOpenRouter,
	name RootModelName,
) RootGenerator {
	return newOpenRouter(GeneratorArgs{
		Model: string(name),
	})
}

// LeafGenerator is the low-cost tier queried once per chunk.
type LeafGenerator Generator

func (Module) LeafGenerator(
	newOpenRouter NewOpenRouter,
	name LeafModelName,
) LeafGenerator {
	return newOpenRouter(GeneratorArgs{
		Model:       string(name),
		Temperature: vars.PtrTo(float32(0)),
	})
}
