package source

import (
	"fmt"
	"strings"

	"github.com/jaypipes/ghw"
)

// GPUCards lists the graphics cards found on the PCI bus as "Vendor Product"
// strings. It reads sysfs once and is meant to be called at startup.
func GPUCards() ([]string, error) {
	info, err := ghw.GPU(ghw.WithDisableWarnings())
	if err != nil {
		if isNotSupported(err) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("source: gpu inventory: %w", err)
	}
	var names []string
	for _, card := range info.GraphicsCards {
		if card == nil || card.DeviceInfo == nil {
			continue
		}
		var parts []string
		if v := card.DeviceInfo.Vendor; v != nil && v.Name != "" {
			parts = append(parts, v.Name)
		}
		if p := card.DeviceInfo.Product; p != nil && p.Name != "" {
			parts = append(parts, p.Name)
		}
		if len(parts) > 0 {
			names = append(names, strings.Join(parts, " "))
		}
	}
	if len(names) == 0 {
		return nil, ErrUnavailable
	}
	return names, nil
}

// PreferredGPUName picks the card the vendor tool is most likely reporting
// on: the first NVIDIA card, else the first card listed.
func PreferredGPUName(cards []string) string {
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c), "nvidia") {
			return c
		}
	}
	if len(cards) > 0 {
		return cards[0]
	}
	return ""
}
