// SPDX-License-Identifier: MPL-2.0

package launcher

import "errors"

const (
	// DescriptorSuffix names the current descriptor symbol, "<module>.$module_".
	DescriptorSuffix = ".$module_"
	// LegacyDescriptorSuffix names the legacy descriptor symbol, "<module>.module_".
	LegacyDescriptorSuffix = ".module_"
)

// ReadMetadata returns the identity declared by module's descriptor. It
// returns nil without error when the module has no descriptor, since plain
// code without one may still be run.
func ReadMetadata(ec ExecutionContext, module string) (*Metadata, error) {
	for _, suffix := range []string{DescriptorSuffix, LegacyDescriptorSuffix} {
		md, err := ec.Descriptor(module + suffix)
		if err == nil {
			return md, nil
		}
		if !errors.Is(err, ErrSymbolNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
