package cutting

import "furniture-backend/internal/models"

// VelvetPlaceholder is the material name MATERIALS rules use for "the
// customer's chosen fabric".
const VelvetPlaceholder = "VELVET"

type ruleBlock struct {
	dept models.Department
	kind models.ProductKind
	size models.SizeKey
}

func (b ruleBlock) piece(material string, width, height, qty int, note string) models.CuttingRule {
	return models.CuttingRule{
		Department:      b.dept,
		ProductKind:     b.kind,
		SizeKey:         b.size,
		Material:        material,
		Width:           width,
		Height:          height,
		QuantityPerUnit: qty,
		Note:            note,
	}
}

var sizedKeys = []models.SizeKey{
	models.SizeQueen, models.SizeDouble, models.SizeThreeQuarter, models.SizeSingle,
}

// DefaultRules is the workshop's bill of materials for every headboard the
// factory builds, in millimetres.
func DefaultRules() []models.CuttingRule {
	var rules []models.CuttingRule
	rules = append(rules, materialsRules()...)
	rules = append(rules, woodRules()...)
	rules = append(rules, foamRules()...)
	return rules
}

func materialsRules() []models.CuttingRule {
	var out []models.CuttingRule
	add := func(kind models.ProductKind, size models.SizeKey, pieces func(b ruleBlock) []models.CuttingRule) {
		out = append(out, pieces(ruleBlock{models.DeptMaterials, kind, size})...)
	}

	bellaFront := map[models.SizeKey]int{
		models.SizeQueen:        1200,
		models.SizeDouble:       1111,
		models.SizeThreeQuarter: 920,
		models.SizeSingle:       750,
	}
	for _, size := range sizedKeys {
		h := bellaFront[size]
		add(models.KindBella, size, func(b ruleBlock) []models.CuttingRule {
			return []models.CuttingRule{b.piece(VelvetPlaceholder, 1450, h, 1, "front piece")}
		})
	}

	panelStrip := map[models.SizeKey]int{
		models.SizeQueen:        310,
		models.SizeDouble:       310,
		models.SizeThreeQuarter: 340,
		models.SizeSingle:       310,
	}
	for _, size := range sizedKeys {
		w := panelStrip[size]
		add(models.KindPanel, size, func(b ruleBlock) []models.CuttingRule {
			return []models.CuttingRule{
				b.piece(VelvetPlaceholder, 380, 106, 2, "panel"),
				b.piece(VelvetPlaceholder, w, 106, 6, "panel"),
			}
		})
	}

	for _, kind := range []models.ProductKind{models.KindBella, models.KindPanel} {
		add(kind, models.SizeAny, func(b ruleBlock) []models.CuttingRule {
			return []models.CuttingRule{b.piece(VelvetPlaceholder, 700, 200, 1, "bottom piece")}
		})
	}

	spunbond := map[models.SizeKey][2]int{ // bottom width, back width
		models.SizeQueen:        {1420, 1530},
		models.SizeDouble:       {1290, 1530},
		models.SizeThreeQuarter: {1050, 1250},
		models.SizeSingle:       {880, 1250},
	}
	for _, kind := range []models.ProductKind{models.KindBella, models.KindPanel} {
		for _, size := range sizedKeys {
			w := spunbond[size]
			add(kind, size, func(b ruleBlock) []models.CuttingRule {
				return []models.CuttingRule{
					b.piece("SPUNBOND", w[0], 700, 1, "spunbond bottom"),
					b.piece("SPUNBOND", w[1], 1600, 1, "spunbond back"),
				}
			})
		}
	}

	add(models.KindWingback, models.SizeAny, func(b ruleBlock) []models.CuttingRule {
		return []models.CuttingRule{
			b.piece(VelvetPlaceholder, 1520, 210, 2, "wing"),
			b.piece(VelvetPlaceholder, 1520, 80, 1, "wing"),
			b.piece(VelvetPlaceholder, 210, 80, 1, "wing"),
		}
	})

	return out
}

func woodRules() []models.CuttingRule {
	panel := func(size models.SizeKey) ruleBlock { return ruleBlock{models.DeptWood, models.KindPanel, size} }
	bella := func(size models.SizeKey) ruleBlock { return ruleBlock{models.DeptWood, models.KindBella, size} }
	wing := ruleBlock{models.DeptWood, models.KindWingback, models.SizeAny}

	pq, pd, pt, ps := panel(models.SizeQueen), panel(models.SizeDouble), panel(models.SizeThreeQuarter), panel(models.SizeSingle)
	bq, bd, bt, bs := bella(models.SizeQueen), bella(models.SizeDouble), bella(models.SizeThreeQuarter), bella(models.SizeSingle)

	return []models.CuttingRule{
		pq.piece("PINE", 1450, 33, 2, "frame"),
		pq.piece("PINE", 1560, 33, 3, "frame"),
		pq.piece("PINE", 855, 23, 3, "frame"),
		pq.piece("PINE", 520, 23, 3, "frame"),
		pq.piece("PINE", 1000, 10, 2, "offcut"),
		pq.piece("PINE", 0, 0, 6, "triangle"),
		pq.piece("CHIPBOARD", 199, 900, 8, "panel"),

		pd.piece("PINE", 1410, 33, 3, "frame"),
		pd.piece("PINE", 1450, 33, 2, "frame"),
		pd.piece("PINE", 855, 23, 4, "frame"),
		pd.piece("PINE", 520, 23, 3, "frame"),
		pd.piece("PINE", 1000, 10, 2, "offcut"),
		pd.piece("PINE", 0, 0, 6, "triangle"),
		pd.piece("CHIPBOARD", 206, 900, 7, "panel"),

		pt.piece("PINE", 1450, 33, 2, "frame"),
		pt.piece("PINE", 1060, 33, 3, "frame"),
		pt.piece("PINE", 855, 23, 2, "frame"),
		pt.piece("PINE", 520, 23, 3, "frame"),
		pt.piece("PINE", 600, 10, 2, "offcut"),
		pt.piece("PINE", 0, 0, 6, "triangle"),
		pt.piece("CHIPBOARD", 219, 900, 5, "panel"),

		ps.piece("PINE", 1450, 33, 2, "frame"),
		ps.piece("PINE", 960, 33, 3, "frame"),
		ps.piece("PINE", 855, 23, 2, "frame"),
		ps.piece("PINE", 520, 23, 3, "frame"),
		ps.piece("PINE", 600, 10, 2, "offcut"),
		ps.piece("PINE", 0, 0, 6, "triangle"),
		ps.piece("CHIPBOARD", 199, 900, 5, "panel"),

		bq.piece("PINE", 1450, 33, 2, "frame"),
		bq.piece("PINE", 1410, 33, 1, "frame"),
		bq.piece("PINE", 1560, 33, 3, "frame"),
		bq.piece("PINE", 790, 23, 2, "frame"),
		bq.piece("PINE", 750, 23, 2, "frame"),
		bq.piece("PINE", 530, 23, 2, "frame"),
		bq.piece("PINE", 0, 0, 4, "triangle"),
		bq.piece("PINE", 0, 0, 4, "square"),
		bq.piece("MASONITE", 1600, 900, 1, "back"),

		bd.piece("PINE", 1450, 33, 2, "frame"),
		bd.piece("PINE", 1410, 33, 4, "frame"),
		bd.piece("PINE", 730, 23, 2, "frame"),
		bd.piece("PINE", 660, 23, 2, "frame"),
		bd.piece("PINE", 530, 23, 2, "frame"),
		bd.piece("PINE", 0, 0, 4, "triangle"),
		bd.piece("PINE", 0, 0, 4, "square"),
		bd.piece("MASONITE", 1450, 875, 1, "back"),

		bt.piece("PINE", 1450, 33, 2, "frame"),
		bt.piece("PINE", 1410, 33, 1, "frame"),
		bt.piece("PINE", 1160, 33, 3, "frame"),
		bt.piece("PINE", 590, 23, 2, "frame"),
		bt.piece("PINE", 545, 23, 2, "frame"),
		bt.piece("PINE", 530, 23, 2, "frame"),
		bt.piece("PINE", 0, 0, 4, "triangle"),
		bt.piece("PINE", 0, 0, 4, "square"),
		bt.piece("MASONITE", 1200, 875, 1, "back"),

		bs.piece("PINE", 1450, 33, 2, "frame"),
		bs.piece("PINE", 1410, 33, 1, "frame"),
		bs.piece("PINE", 960, 33, 3, "frame"),
		bs.piece("PINE", 490, 23, 2, "frame"),
		bs.piece("PINE", 445, 23, 2, "frame"),
		bs.piece("PINE", 530, 23, 2, "frame"),
		bs.piece("PINE", 0, 0, 4, "triangle"),
		bs.piece("PINE", 0, 0, 4, "square"),
		bs.piece("MASONITE", 1000, 875, 1, "back"),

		wing.piece("CHIPBOARD", 1450, 50, 2, "wing (12mm)"),
		wing.piece("PINE", 110, 110, 4, "wing"),
		wing.piece("PINE", 105, 50, 5, "wing"),
		wing.piece("POLYPROP", 1690, 40, 1, "wing"),
	}
}

func foamRules() []models.CuttingRule {
	var out []models.CuttingRule

	bella := map[models.SizeKey][2]int{ // 40mm width, 20mm width
		models.SizeQueen:        {1590, 1640},
		models.SizeDouble:       {1440, 1470},
		models.SizeThreeQuarter: {1190, 1220},
		models.SizeSingle:       {990, 1020},
	}
	panel := map[models.SizeKey][2]int{ // strip width, count
		models.SizeQueen:        {215, 8},
		models.SizeDouble:       {222, 7},
		models.SizeThreeQuarter: {255, 5},
		models.SizeSingle:       {215, 5},
	}

	for _, size := range sizedKeys {
		b := ruleBlock{models.DeptFoam, models.KindBella, size}
		out = append(out,
			b.piece("40mm White", bella[size][0], 875, 1, "sponge"),
			b.piece("20mm White", bella[size][1], 910, 1, "sponge"),
		)

		p := ruleBlock{models.DeptFoam, models.KindPanel, size}
		out = append(out, p.piece("40mm White", panel[size][0], 920, panel[size][1], "sponge panel"))
	}

	w := ruleBlock{models.DeptFoam, models.KindWingback, models.SizeAny}
	out = append(out, w.piece("10mm White", 1515, 280, 1, "wing"))

	return out
}
