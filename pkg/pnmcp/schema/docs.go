package schema

import (
	"github.com/google/jsonschema-go/jsonschema"
)

func (b *Builder) sdkDocumentation() *jsonschema.Schema {
	return object(
		"Fetch PubNub SDK documentation for a language and feature",
		map[string]*jsonschema.Schema{
			"language": strEnum("SDK language", b.catalog.SDKLanguages()...),
			"feature":  strEnum("SDK feature", b.catalog.SDKFeatures()...),
		},
		"language", "feature",
	)
}

func (b *Builder) chatDocumentation() *jsonschema.Schema {
	return object(
		"Fetch PubNub Chat SDK documentation for a language and feature",
		map[string]*jsonschema.Schema{
			"language": strEnum("Chat SDK language", b.catalog.ChatLanguages()...),
			"feature":  strEnum("Chat SDK feature", b.catalog.ChatFeatures()...),
		},
		"language", "feature",
	)
}

func (b *Builder) howTo() *jsonschema.Schema {
	return object(
		"Fetch a how-to guide",
		map[string]*jsonschema.Schema{
			"slug": strEnum("How-to guide", b.catalog.HowToSlugs()...),
		},
		"slug",
	)
}

func (b *Builder) refineSDKPair(args map[string]any) error {
	lang, _ := args["language"].(string)
	feature, _ := args["feature"].(string)

	return b.catalog.CheckSDK(lang, feature)
}

func (b *Builder) refineChatPair(args map[string]any) error {
	lang, _ := args["language"].(string)
	feature, _ := args["feature"].(string)

	return b.catalog.CheckChat(lang, feature)
}
