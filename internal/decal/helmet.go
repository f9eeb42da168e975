package decal

import "fmt"

type bilingual struct {
	en string
	vi string
}

func (b bilingual) in(lang Language) string {
	return pick(lang, b.en, b.vi)
}

var profileInstructions = map[HelmetType]bilingual{
	HalfFace: {
		en: "INSTRUCTION: This is a half-face helmet. The decal must not cover the open face area. Keep the design on the helmet shell.",
		vi: "HƯỚNG DẪN: Đây là nón bảo hiểm nửa đầu. Decal không được che phủ vùng mặt hở. Giữ thiết kế trên vỏ nón.",
	},
	OpenFace: {
		en: "INSTRUCTION: This is an open-face (3/4) helmet. Avoid applying the decal over the face opening, visor hinge, and any snaps.",
		vi: "HƯỚNG DẪN: Đây là nón bảo hiểm 3/4. Tránh áp decal lên vùng mặt hở, khớp kính và các nút bấm.",
	},
	FullFace: {
		en: "INSTRUCTION: This is a full-face helmet. The decal must not cover the visor, visor hinge, vents, or the chin bar's lower edge.",
		vi: "HƯỚNG DẪN: Đây là nón bảo hiểm full-face. Decal không được che phủ kính, khớp kính, khe thông gió, hoặc cạnh dưới của cằm.",
	},
	CrossMX: {
		en: "INSTRUCTION: This is a motocross/MX helmet. The decal must not cover the goggle port, peak/visor, or the prominent chin bar vents.",
		vi: "HƯỚNG DẪN: Đây là nón bảo hiểm cào cào/MX. Decal không được che phủ cổng kính, lưỡi trai/mái che, hoặc các khe thông gió lớn ở cằm.",
	},
}

const studioBackdropEn = "The helmet is isolated on a solid, seamless, professional studio-style neutral white background (#FFFFFF). The background must be completely opaque, with no transparency, textures, or gradients. Lighting should be soft and even, typical of a product photoshoot, with no hard shadows cast onto the background."

const studioBackdropVi = "Mũ bảo hiểm được tách biệt trên nền trắng trung tính (#FFFFFF) đồng nhất, liền mạch, theo phong cách studio chuyên nghiệp. Nền phải hoàn toàn không trong suốt, không có hoạ tiết hay gradient. Ánh sáng phải dịu và đều, như trong buổi chụp ảnh sản phẩm, không có bóng đổ gắt trên nền."

var baseGenerationPrompts = map[HelmetType]bilingual{
	HalfFace: {
		en: "Clean half-face motorcycle helmet, right profile (90°), camera on the left of helmet, strap & buckle visible, completely smooth shell with no visor hinges, mounting points, or hardware visible, no branding or text, neutral black shell #111, smooth gloss finish, accurate proportions. " + studioBackdropEn + " Not left-facing, do not mirror, product shot, high-res.",
		vi: "Mũ bảo hiểm nửa đầu (half-face), nhìn hông phải (90°), máy ảnh ở bên trái mũ, quai & khóa nhìn rõ, vỏ trơn hoàn toàn, không có bản lề kính, điểm gắn hay bất kỳ phần cứng nào, không logo/chữ, vỏ đen trung tính #111, bề mặt bóng, tỷ lệ chuẩn. " + studioBackdropVi + " Không nhìn trái, không lật ảnh, ảnh sản phẩm độ phân giải cao.",
	},
	OpenFace: {
		en: "URGENT: Generate an open-face (three-quarter) motorcycle helmet ONLY. CRITICAL CONSTRAINT: This helmet has ABSOLUTELY NO CHIN BAR. The jaw and chin area must be completely open and visible. The helmet shell covers the ears and back of the head, and its bottom edge stops above the jawline. This is a classic '3/4' style helmet. Right profile view (90°), neutral black shell #111, gloss finish, no branding. " + studioBackdropEn + " REPEAT: DO NOT generate a full-face helmet or any helmet with a chin bar. Crisp product shot, not left-facing, no mirroring.",
		vi: "KHẨN CẤP: Chỉ tạo mũ bảo hiểm open-face (mũ 3/4). RÀNG BUỘC TỐI QUAN TRỌNG: Mũ này TUYỆT ĐỐI KHÔNG CÓ ỐP CẰM. Vùng cằm và hàm phải hoàn toàn để hở và có thể nhìn thấy. Vỏ mũ che tai và gáy, và cạnh dưới của nó dừng lại ở phía trên đường viền hàm. Đây là kiểu mũ '3/4' cổ điển. Nhìn từ hông phải (90°), vỏ màu đen trung tính #111, bề mặt bóng, không có logo. " + studioBackdropVi + " LẶP LẠI: KHÔNG tạo mũ full-face hay bất kỳ mũ nào có ốp cằm. Ảnh sản phẩm sắc nét, không nhìn trái, không lật ảnh.",
	},
	FullFace: {
		en: "A very specific type of helmet: a full-face motorcycle helmet with a one-piece shell. CRITICAL: The helmet MUST have a solid, non-removable chin bar that is an integral, fixed part of the shell structure. There should be no visible seams, lines, or mechanisms indicating a flip-up or modular front. Right profile view (90°), clear visor, right-side visor hinge visible, no logos or text, neutral black shell #111, gloss finish, accurate geometry. " + studioBackdropEn + " This is NOT a modular helmet. Not left-facing, do not mirror, high-res product shot.",
		vi: "Một loại mũ bảo hiểm rất cụ thể: mũ full-face với vỏ liền khối một mảnh. QUAN TRỌNG: Mũ BẮT BUỘC phải có ốp cằm cứng, không thể tháo rời, là một phần cố định, liền khối của cấu trúc vỏ. Không được có bất kỳ đường nối, khe hở hay cơ cấu nào cho thấy đây là mũ lật cằm hay mũ modular. Nhìn từ hông phải (90°), kính trong, thấy bản lề kính bên phải, không logo/chữ, vỏ đen #111, bề mặt bóng, hình học chuẩn xác. " + studioBackdropVi + " Đây KHÔNG PHẢI là mũ lật cằm (modular). Không nhìn trái, không lật ảnh, ảnh sản phẩm độ phân giải cao.",
	},
	CrossMX: {
		en: "Motocross (MX) helmet with peak/visor and open face (no goggles), right profile (90°), peak orientation and side vents visible, no branding, neutral black #111, semi-matte finish. " + studioBackdropEn + " Product shot, not left-facing, no mirroring.",
		vi: "Mũ motocross (MX) có lưỡi trai và mặt mở (không kèm kính bảo hộ), nhìn hông phải (90°), thấy rõ lưỡi trai và khe thoáng bên hông, không logo, vỏ đen #111, bề mặt bán mờ. " + studioBackdropVi + " Ảnh sản phẩm, không nhìn trái, không lật ảnh.",
	},
}

var typeConstraints = map[HelmetType]bilingual{
	HalfFace: {
		en: "CRITICAL CONSTRAINT: The helmet MUST be a half-face helmet. It has NO chin bar and NO fixed visor. The face is completely open from the chin upwards.",
		vi: "RÀNG BUỘC TỐI QUAN TRỌNG: Mũ BẮT BUỘC phải là mũ bảo hiểm nửa đầu. Mũ KHÔNG CÓ ốp cằm và KHÔNG CÓ kính che cố định. Phần mặt phải hoàn toàn mở từ cằm trở lên.",
	},
	OpenFace: {
		en: "CRITICAL CONSTRAINT: The helmet MUST be an open-face (3/4) helmet. It has NO chin bar. The shell covers the ears and back of the head, but the face area is open.",
		vi: "RÀNG BUỘC TỐI QUAN TRỌNG: Mũ BẮT BUỘC phải là mũ bảo hiểm 3/4 (open-face). Mũ KHÔNG CÓ ốp cằm. Vỏ mũ che tai và sau gáy, nhưng vùng mặt phải để hở.",
	},
	FullFace: {
		en: "CRITICAL CONSTRAINT: The helmet MUST be a full-face helmet. It MUST have a solid, non-removable chin bar as an integral part of the shell.",
		vi: "RÀNG BUỘC TỐI QUAN TRỌNG: Mũ BẮT BUỘC phải là mũ bảo hiểm full-face. Mũ BẮT BUỘC phải có ốp cằm cứng, không thể tháo rời, là một phần liền khối của vỏ.",
	},
	CrossMX: {
		en: "CRITICAL CONSTRAINT: The helmet MUST be a motocross (MX) helmet. It MUST have a prominent, elongated chin bar and a large peak/visor on top. The face area is open for goggles.",
		vi: "RÀNG BUỘC TỐI QUAN TRỌNG: Mũ BẮT BUỘC phải là mũ bảo hiểm cào cào (MX). Mũ BẮT BUỘC phải có ốp cằm nhô ra rõ rệt và một lưỡi trai/mái che lớn ở trên. Vùng mặt phải để hở để đeo kính.",
	},
}

// ProfileInstruction is appended to every single-view prompt. It starts with
// a blank line and is empty for an unknown type.
func ProfileInstruction(t HelmetType, lang Language) string {
	in, ok := profileInstructions[t]
	if !ok {
		return ""
	}
	return "\n\n" + in.in(lang)
}

func BaseGenerationPrompt(t HelmetType, lang Language) string {
	return baseGenerationPrompts[t].in(lang)
}

// TypeConstraint is appended after the decal brief; like ProfileInstruction
// it carries its own leading blank line.
func TypeConstraint(t HelmetType, lang Language) string {
	c, ok := typeConstraints[t]
	if !ok {
		return ""
	}
	return "\n\n" + c.in(lang)
}

// ImagenPrompt builds a text-to-image prompt that renders a new helmet of
// type t already wearing the decal described by brief.
func ImagenPrompt(t HelmetType, lang Language, brief string) string {
	return fmt.Sprintf("%s\n\nApply the following decal:\n%s%s%s",
		BaseGenerationPrompt(t, lang), brief, ProfileInstruction(t, lang), TypeConstraint(t, lang))
}

// PlaceholderPrompt asks an image-edit model to turn a neutral placeholder
// silhouette into a photoreal helmet before applying the decal.
func PlaceholderPrompt(t HelmetType, lang Language, brief string) string {
	return fmt.Sprintf("First, turn this placeholder shape into a realistic, photorealistic, studio-shot image of a brand new %s motorcycle helmet. The helmet should have a neutral black color (#111) and a smooth gloss finish, shown from the right profile (90 degrees). Place it on a neutral white studio background (#FFFFFF). Then, apply the following decal design to it:\n\n%s%s",
		t, brief, ProfileInstruction(t, lang))
}

// EditPrompt applies brief to an uploaded Helmet 2 photo.
func EditPrompt(t HelmetType, lang Language, brief string) string {
	return brief + ProfileInstruction(t, lang)
}
