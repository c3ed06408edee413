package kind

import (
	"path/filepath"
	"strings"
)

// ExtensionToKind maps asset file extensions (without dot) to asset kinds.
var ExtensionToKind = map[string]string{
	// Textures
	"png": "Texture", "jpg": "Texture", "jpeg": "Texture", "tga": "Texture",
	"psd": "Texture", "tif": "Texture", "tiff": "Texture", "bmp": "Texture",
	"gif": "Texture", "exr": "Texture", "hdr": "Texture", "iff": "Texture",
	"pict": "Texture", "rendertexture": "RenderTexture",
	"spriteatlas": "SpriteAtlas", "spriteatlasv2": "SpriteAtlas",
	// Materials / shaders
	"mat":            "Material",
	"physicmaterial": "PhysicMaterial", "physicsmaterial2d": "PhysicMaterial",
	"shader": "Shader", "shadergraph": "Shader", "shadersubgraph": "Shader",
	"compute": "ComputeShader", "cginc": "Shader", "hlsl": "Shader",
	// Scenes / prefabs
	"unity":  "Scene",
	"prefab": "Prefab",
	// Models
	"fbx": "Model", "obj": "Model", "blend": "Model", "dae": "Model",
	"3ds": "Model", "max": "Model", "ma": "Model", "mb": "Model",
	"mesh": "Mesh",
	// Animation
	"anim":               "Animation",
	"controller":         "AnimatorController",
	"overridecontroller": "AnimatorController",
	"mask":               "AvatarMask",
	"playable":           "Timeline",
	"signal":             "Timeline",
	"mixer":              "AudioMixer",
	// Audio
	"wav": "Audio", "mp3": "Audio", "ogg": "Audio", "aif": "Audio",
	"aiff": "Audio", "flac": "Audio", "xm": "Audio", "mod": "Audio", "it": "Audio",
	// Video
	"mp4": "Video", "mov": "Video", "webm": "Video", "avi": "Video",
	// Fonts
	"ttf": "Font", "otf": "Font", "fontsettings": "Font",
	// Scripts / data
	"cs":           "Script",
	"asmdef":       "AssemblyDefinition",
	"asmref":       "AssemblyDefinition",
	"asset":        "ScriptableObject",
	"lighting":     "LightingSettings",
	"terrainlayer": "TerrainLayer",
	"guiskin":      "GUISkin",
	"flare":        "Flare",
	"cubemap":      "Cubemap",
	"uss":          "StyleSheet", "uxml": "UIDocument", "tss": "StyleSheet",
	"json": "Text", "txt": "Text", "xml": "Text", "bytes": "Text",
	"csv": "Text", "yaml": "Text", "yml": "Text", "md": "Text", "html": "Text",
	// Native
	"dll": "Plugin", "so": "Plugin", "dylib": "Plugin", "bundle": "Plugin",
	"jar": "Plugin", "aar": "Plugin",
}

// Folder is the kind reported for container paths.
const Folder = "Folder"

// Unknown is the kind of extensions missing from ExtensionToKind.
const Unknown = "Unknown"

// Detect returns the asset kind for a path based on its extension.
// Returns "Unknown" if the extension is not recognized.
func Detect(assetPath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(assetPath), "."))
	if ext == "" {
		return Unknown
	}
	if k, ok := ExtensionToKind[ext]; ok {
		return k
	}
	return Unknown
}

// IsTextSerialized reports whether an asset kind is normally stored as
// text-serialized YAML that can carry guid references to other assets.
func IsTextSerialized(k string) bool {
	switch k {
	case "Texture", "Audio", "Video", "Font", "Model", "Plugin", "Script", "Text", Unknown:
		return false
	}
	return true
}
