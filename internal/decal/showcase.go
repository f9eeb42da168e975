package decal

import (
	"fmt"
	"strings"
)

const fullViewTemplate = `You are a professional product photographer and graphic designer. Your task is to create a composite product showcase image. You will use a provided single helmet image as a reference and an original design brief for accuracy.

**Original Design Brief (Source of Truth):**
---
{brief}
---

**CRITICAL INSTRUCTIONS - READ CAREFULLY:**
1.  **Reference Image:** The provided image is the primary visual reference for the main view (right-profile). You must match its style and decal application precisely.
2.  **Design Brief:** The text brief is the absolute source of truth for the design. Use it to accurately create the unseen front and rear views, ensuring perfect consistency.
3.  **Layout Requirement: EXACTLY THREE VIEWS.**
    *   You MUST generate a single composite image containing exactly **THREE** distinct views of the helmet. Do NOT generate more or fewer than three views. Do NOT duplicate any views.
    *   **View 1 (Main View, Large):** The right-profile view, which should be the largest and most prominent element, closely matching the provided reference image.
    *   **View 2 (Secondary View, Smaller):** A direct front-on view of the helmet.
    *   **View 3 (Secondary View, Smaller):** A direct rear-on view of the helmet.
    *   Arrange these three views aesthetically on a single canvas.

4.  **Absolute Consistency:** The decal design, colors (including HEX codes from the brief), text, and finish on the front and rear views must be a perfect, logical continuation of the main view. All three views must look like the exact same product shot from different angles.
5.  **Background & Style:** Place all three views on a clean, seamless, neutral light grey (#f0f0f0) professional studio background. The lighting must be soft and consistent across all views.
6.  **Final Output:** The final result must be a single, high-resolution, photorealistic image suitable for a product catalog.`

// FullViewPrompt asks for a main/front/rear composite built from the single
// view and the brief that produced it.
func FullViewPrompt(brief string) string {
	return strings.Replace(fullViewTemplate, "{brief}", brief, 1)
}

type StyleID string

const (
	StyleLineSketch StyleID = "line-sketch"
	StyleWatercolor StyleID = "watercolor"
	StyleMarker     StyleID = "marker"
	StyleNeon       StyleID = "neon"
)

const DefaultStyleStrength = 70

var stylePrompts = map[StyleID]string{
	StyleLineSketch: "Redraw this helmet as a clean, technical line art sketch. Strength: %d%%.",
	StyleWatercolor: "Reimagine this helmet with a vibrant, loose watercolor effect. Strength: %d%%.",
	StyleMarker:     "Render this helmet design using Copic-style markers with bold outlines and blended colors. Strength: %d%%.",
	StyleNeon:       "Transform this helmet into a glowing neon and chrome cyberpunk design. Strength: %d%%.",
}

func (s StyleID) Valid() bool {
	_, ok := stylePrompts[s]
	return ok
}

// ClampStrength keeps a style strength within 0..100.
func ClampStrength(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// StylePrompt returns the style-pack instruction for id, or "" if id is
// unknown.
func StylePrompt(id StyleID, strength int, preserveFinish bool) string {
	tmpl, ok := stylePrompts[id]
	if !ok {
		return ""
	}
	prompt := fmt.Sprintf(tmpl, ClampStrength(strength))
	if preserveFinish {
		prompt += " Preserve the original gloss or matte finish of the helmet shell underneath the style."
	}
	return prompt
}
