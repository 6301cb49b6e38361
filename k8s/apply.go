package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/dynamic"
	"k8s.io/utils/ptr"

	"github.com/rs/zerolog/log"
)

func (c *client) ApplyManifest(ctx context.Context, manifest []byte, namespace, fieldManager string) (int, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifest), 4096)

	applied := 0
	for doc := 0; ; doc++ {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return applied, fmt.Errorf("failed to decode manifest document %d: %w", doc, err)
		}

		// "---" separators without content
		if len(obj.Object) == 0 {
			continue
		}

		if !obj.IsList() {
			if err := c.apply(ctx, &obj, namespace, fieldManager); err != nil {
				return applied, err
			}
			applied++
			continue
		}

		// kind: List and *List documents are applied item by item
		err := obj.EachListItem(func(item runtime.Object) error {
			u, ok := item.(*unstructured.Unstructured)
			if !ok {
				return fmt.Errorf("unexpected list item type %T in manifest document %d", item, doc)
			}
			if err := c.apply(ctx, u, namespace, fieldManager); err != nil {
				return err
			}
			applied++
			return nil
		})
		if err != nil {
			return applied, err
		}
	}

	return applied, nil
}

func (c *client) apply(ctx context.Context, obj *unstructured.Unstructured, namespace, fieldManager string) error {
	if err := c.applyObject(ctx, obj, namespace, fieldManager); err != nil {
		return fmt.Errorf("failed to apply %s %s: %w", obj.GetKind(), obj.GetName(), err)
	}
	return nil
}

func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured, namespace, fieldManager string) error {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal object to JSON: %w", err)
	}

	opts := metav1.PatchOptions{
		FieldManager: fieldManager,
		Force:        ptr.To(true),
	}

	var res dynamic.ResourceInterface = c.dynamic.Resource(mapping.Resource)
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		ns := obj.GetNamespace()
		if ns == "" {
			ns = namespace
		}
		res = c.dynamic.Resource(mapping.Resource).Namespace(ns)
		log.Debug().Str("kind", gvk.Kind).Str("name", obj.GetName()).Str("namespace", ns).Msg("applying object")
	} else {
		log.Debug().Str("kind", gvk.Kind).Str("name", obj.GetName()).Msg("applying cluster scoped object")
	}

	if _, err := res.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts); err != nil {
		return fmt.Errorf("server-side apply failed: %w", err)
	}
	return nil
}

