package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// DefaultBrand は再デザイン後のロゴに入れる既定のブランド名です。
const DefaultBrand = "ANA SHARIF"

const redesignBrief = `Act as a professional senior logo designer. Redesign the provided logo for a Business Development Institute named "{{.Brand}}".

STRICT REQUIREMENTS:
1. STYLE: Create a clean, modern VECTOR art style logo. Flat design, high geometric precision.
2. COMPOSITION: Completely REMOVE the dome/mosque background from the original image.
3. SYMBOLISM: Create a new symbol that represents "Business Development" and "Smart Intelligence" (AI). Use abstract concepts like connecting nodes, upward growth charts, stylized brain circuitry, or a hexagon grid.
4. CONCEPT: The design must be conceptual, unique, and memorable. Avoid clichés like standard lightbulbs or generic gears. It should look like a premium tech-business consultancy brand.
5. TEXT: The text must read "{{.Brand}}".
6. TYPOGRAPHY: STRICTLY mimic the font style, weight, and serifs of the text in the second provided image.
7. LANGUAGE: ENGLISH ONLY. Do not use any Persian/Arabic script.

Output a high-quality, professional logo on a white background.`

var briefTemplate = template.Must(template.New("brief").Parse(redesignBrief))

// Build はブランド名を差し込んだ固定プロンプトを返します。
func Build(brand string) (string, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return "", fmt.Errorf("brand name is required")
	}

	var buf bytes.Buffer
	if err := briefTemplate.Execute(&buf, struct{ Brand string }{Brand: brand}); err != nil {
		return "", fmt.Errorf("プロンプトの組み立てに失敗しました: %w", err)
	}
	return buf.String(), nil
}

// Rules は画面に表示するデザインルールの一覧です。
func Rules(brand string) []string {
	return []string{
		"Vector art style",
		"Remove dome/mosque background",
		"Add Smart Business/AI symbols",
		fmt.Sprintf("Use reference font for %q", strings.TrimSpace(brand)),
		"English text only (No Persian)",
	}
}
