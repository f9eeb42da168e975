package decal

import (
	"regexp"
	"strings"
)

var noTypography = regexp.MustCompile(`(?i)none|không có`)

var helmetModifiers = map[HelmetType]struct{ en, vi string }{
	HalfFace: {
		en: "Half-face: open ear/strap visible; keep rim clean; preserve strap area.",
		vi: "Nửa đầu: thấy tai/quai; giữ sạch viền; bảo toàn vùng quai.",
	},
	OpenFace: {
		en: "Open-face (3/4): wide face opening; clean rim; avoid front opening.",
		vi: "3/4: mặt mở rộng; viền sạch; tránh vùng mở phía trước.",
	},
	FullFace: {
		en: "Full-face: one-piece shell with solid jawline (non-modular; no flip-up lines); right visor hinge visible.",
		vi: "Full-face: vỏ liền khối, cằm cứng (không phải loại lật); thấy bản lề kính phải.",
	},
	CrossMX: {
		en: "Cross/MX: peak/roost visor present; open face (no goggles by default); emphasize side vents & peak surfaces.",
		vi: "Cào cào/MX: có lưỡi trai; mặt mở (mặc định không có kính); nhấn mạnh khe gió bên & bề mặt lưỡi trai.",
	},
}

const proTemplateEn = `[Decal Theme] {theme} (e.g., abstract / stripes / geometric / floral / flame), sporty/urban high-tech.

[Motifs] {motifs} (e.g., asymmetric racing stripes, chevrons, interlocking polygons, micro-texture/halftone in secondary zones).

[Composition & Hierarchy]
Primary focal: right side around visor hinge / rear centerline / crown sweep.
Secondary: jawline band.
Tertiary accents: small vents.
Coverage ratio: Primary 45%, Secondary 25%, Accents 10-15%, Negative space 15-20%.

[Pattern Flow & Panel Map]
Directional wrap: rear → crown → right side, crossing diagonals ↗/↘.
Panel anchoring: align edges to shell seams/trim; keep seams continuous across crown/rear; avoid visor & vents.
Asymmetry allowed; do not mirror left/right.

[Palette HEX]
Base: {base1}, {base2}; greys: {grey1}, {grey2}; accents (≤ 20%): {accent1}, {accent2}.
Value plan: base 15–30%, mid 40–60%, accents 80–95% luminance.

[Density] {density} (minimal / balanced / dense); keep negative space around visor, vents, and hardware.

[Finish Cues] {finish} (matte ink / semi-matte / metallic flake / pearlescent). Respect shell highlights; decals non-gloss unless specified.

[Typography] {typography} (e.g., none / short generic word, modern sans-serif, placement right side, size 15mm; keep clear space 5mm; stripes must not cut through text).

[Mood/Style Adjectives] {mood} (aggressive, aerodynamic, modern, high-tech, dynamic).

[Helmet Type Modifiers]
{modifier}

[View & Lighting] right profile 90°; The helmet is isolated on a solid, seamless, professional studio-style neutral white background (#FFFFFF). The background must be completely opaque, with no transparency, textures, or gradients. Lighting should be soft and even, typical of a product photoshoot, with no hard shadows cast onto the background.

[Constraints] keep helmet shape/material; avoid visor & vents; preserve reflections; edge-anchored geometry; UV continuity; no brands unless specified.`

const proTemplateVi = `[Chủ đề] {theme} (trừu tượng/sọc/hình học/hoa văn/lửa…), chất thể thao–công nghệ.
[Họa tiết] {motifs} (ví dụ sọc đua bất đối xứng, mũi tên chevron, đa giác lồng ghép, micro-texture ở vùng phụ).

[Bố cục & Phân cấp]
Chính: bên phải quanh bản lề kính. Thứ cấp: dải viền hàm. Phụ: khe gió nhỏ.
Tỉ lệ phủ: Chính 45%, Thứ cấp 25%, Phụ 10-15%, Vùng nghỉ 15-20%.

[Dòng chảy & Bản đồ mảng] Hướng rear → crown → right side; bám mép nhựa/đường ráp; nối mượt qua đỉnh/lưng; không vào kính/khe gió; bất đối xứng, không lật gương.

[Bảng màu HEX] Nền: {base1}, {base2}; xám: {grey1}, {grey2}; nhấn (≤ 20%): {accent1}, {accent2}.
Độ sáng: nền 15–30%, trung 40–60%, nhấn 80–95%.

[Mật độ] {density}; giữ vùng trống quanh kính & khe gió.
[Bề mặt] {finish}; decal không bóng nếu không yêu cầu.
[Chữ] {typography} (không/có chữ ngắn, sans-serif, vị trí right side, cỡ 15 mm, chừa trống 5 mm, không để sọc cắt chữ).
[Loại mũ] {modifier}.
[Góc & Ánh sáng] right profile 90°; Mũ bảo hiểm được tách biệt trên nền trắng trung tính (#FFFFFF) đồng nhất, liền mạch, theo phong cách studio chuyên nghiệp. Nền phải hoàn toàn không trong suốt, không có hoạ tiết hay gradient. Ánh sáng phải dịu và đều, như trong buổi chụp ảnh sản phẩm, không có bóng đổ gắt trên nền.
[Ràng buộc] giữ hình khối/vật liệu, tránh kính & khe gió, giữ highlight, bám mép, liên tục UV, không thương hiệu nếu không chỉ định.`

// HasTypography reports whether the typography field asks for lettering.
func HasTypography(typography string) bool {
	return typography != "" && !noTypography.MatchString(typography)
}

// BuildProPrompt expands p into the long-form "pro" instructions for the
// given helmet type. The closing constraint list is fixed and always asks
// for finish preservation; preserveFinish only affects the simple prompt.
func BuildProPrompt(p Prompt, t HelmetType, lang Language, preserveFinish bool) string {
	plan := PlanPalette(p.Palette)
	hasTypography := HasTypography(p.Typography)

	typography := pick(lang, "none", "không")
	if hasTypography {
		typography = p.Typography + pick(lang,
			", placement right side, size 15mm; keep clear space 5mm; stripes must not cut through text",
			", vị trí right side, cỡ 15 mm, chừa trống 5 mm, không để sọc cắt chữ",
		)
	}

	density := p.Density
	if density == "" {
		density = pick(lang, "balanced", "cân bằng")
	}

	modifier := helmetModifiers[t]

	r := strings.NewReplacer(
		"{theme}", p.Theme,
		"{motifs}", p.Motifs,
		"{base1}", plan.Base1,
		"{base2}", plan.Base2,
		"{grey1}", plan.Grey1,
		"{grey2}", plan.Grey2,
		"{accent1}", plan.Accent1,
		"{accent2}", plan.Accent2,
		"{density}", density,
		"{finish}", p.Finish,
		"{typography}", typography,
		"{mood}", p.Mood,
		"{modifier}", pick(lang, modifier.en, modifier.vi),
	)
	return r.Replace(pick(lang, proTemplateEn, proTemplateVi))
}
