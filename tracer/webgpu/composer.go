package webgpu

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Pascu-Victor/path-tracer/log"
)

//go:embed kernel.wgsl
var kernelTemplate string

// Substitution markers in the kernel template.
const (
	functionsMarker      = "// SURFACE_SHADERS_PLACEHOLDER"
	dispatchMarker       = "// SURFACE_SHADER_DISPATCH_PLACEHOLDER"
	sphereDispatchMarker = "// SURFACE_SHADER_DISPATCH_FOR_SPHERE_EMISSIVE"
)

// The marker a surface shader's entry function must carry in its
// signature.
const shaderResultType = "SurfaceShaderResult"

// ComposedKernel is the result of splicing the surface shaders found in a
// directory into the kernel template.
type ComposedKernel struct {
	// The final kernel source.
	Source string

	// Dispatch index for each shader entry function name. Index 0 is
	// reserved for the built-in shading and never appears here.
	Index map[string]int32
}

// ComposeKernel scans shaderDir for .wgsl surface shader fragments,
// assigns each one a dispatch index starting at 1 and splices the
// functions plus the generated dispatch chains into the kernel template.
// Fragments are processed in sorted filename order so indices are stable
// across runs. Duplicate entry function names are an error.
func ComposeKernel(shaderDir string, logger log.Logger) (*ComposedKernel, error) {
	ck := &ComposedKernel{
		Source: kernelTemplate,
		Index:  make(map[string]int32),
	}

	fragments, err := loadShaderFragments(shaderDir, logger)
	if err != nil {
		return nil, err
	}

	var injected, dispatch, sphereDispatch strings.Builder
	shaderIndex := int32(1)
	for _, frag := range fragments {
		name, err := shaderEntryName(frag.code)
		if err != nil {
			return nil, fmt.Errorf("webgpu tracer: %s: %v", frag.path, err)
		}
		if _, exists := ck.Index[name]; exists {
			return nil, fmt.Errorf("webgpu tracer: duplicate surface shader entry %q in %s", name, frag.path)
		}
		ck.Index[name] = shaderIndex

		fmt.Fprintf(&injected, "// Shader Index %d - %s\n%s\n\n", shaderIndex, frag.path, frag.code)

		if shaderIndex > 1 {
			dispatch.WriteString(" else ")
			sphereDispatch.WriteString(" else ")
		}
		fmt.Fprintf(&dispatch, "if (shaderFunctionIndex == %d) {\n            shaderResult = %s(shaderData);\n        }", shaderIndex, name)
		fmt.Fprintf(&sphereDispatch, "if (sphereShaderIndex == %d) {\n            sphereShaderResult = %s(sphereShaderData);\n        }", shaderIndex, name)

		shaderIndex++
	}

	ck.Source = substituteMarker(ck.Source, functionsMarker, injected.String(), logger)
	ck.Source = substituteMarker(ck.Source, dispatchMarker, dispatch.String(), logger)
	ck.Source = substituteMarker(ck.Source, sphereDispatchMarker, sphereDispatch.String(), logger)

	if len(fragments) > 0 {
		logger.Noticef("composed %d surface shaders into kernel", len(fragments))
	}

	return ck, nil
}

type shaderFragment struct {
	path string
	code string
}

// loadShaderFragments reads the .wgsl files under dir in sorted filename
// order. A missing directory is not an error; the kernel then carries
// only the built-in shading.
func loadShaderFragments(dir string, logger log.Logger) ([]shaderFragment, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Noticef("surface shader directory not found: %s", dir)
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".wgsl" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	fragments := make([]shaderFragment, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		code, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		logger.Infof("loaded surface shader: %s", name)
		fragments = append(fragments, shaderFragment{path: path, code: string(code)})
	}

	return fragments, nil
}

// shaderEntryName extracts the name of the fragment's entry function: the
// first function whose signature returns SurfaceShaderResult.
func shaderEntryName(code string) (string, error) {
	for searchFrom := 0; ; {
		fnPos := strings.Index(code[searchFrom:], "fn ")
		if fnPos == -1 {
			return "", fmt.Errorf("no function returning %s found", shaderResultType)
		}
		fnPos += searchFrom

		nameStart := fnPos + len("fn ")
		parenPos := strings.Index(code[nameStart:], "(")
		if parenPos == -1 {
			return "", fmt.Errorf("no function returning %s found", shaderResultType)
		}

		bodyPos := strings.Index(code[nameStart:], "{")
		if bodyPos == -1 {
			bodyPos = len(code) - nameStart
		}

		signature := code[nameStart+parenPos : nameStart+bodyPos]
		if strings.Contains(signature, "-> "+shaderResultType) {
			name := strings.TrimSpace(code[nameStart : nameStart+parenPos])
			if name == "" {
				return "", fmt.Errorf("unnamed function returning %s", shaderResultType)
			}
			return name, nil
		}

		searchFrom = nameStart + parenPos
	}
}

func substituteMarker(source, marker, replacement string, logger log.Logger) string {
	if !strings.Contains(source, marker) {
		logger.Warningf("could not find %s in kernel template", strings.TrimPrefix(marker, "// "))
		return source
	}
	return strings.Replace(source, marker, replacement, 1)
}
