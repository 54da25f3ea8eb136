// Package classify maps affiliate feed taxonomy text onto the internal
// category tags. Feed taxonomies are inconsistent and mix Spanish and
// English, so classification is a two tier regex cascade: an ordered pass
// over the merchant's category text, then a coarser whole-word pass over
// category plus product title.
package classify

import (
	"regexp"
	"strings"
)

type Tag string

const (
	TagMusic      Tag = "music"
	TagBooks      Tag = "books"
	TagMovies     Tag = "movies"
	TagTech       Tag = "tech-electronics"
	TagFashion    Tag = "fashion"
	TagHomeGarden Tag = "home-garden"
	TagBabyKids   Tag = "baby-kids"
	TagSports     Tag = "sports-outdoors"
	TagArt        Tag = "collectibles-art"
	TagDIY        Tag = "diy"
	TagBeauty     Tag = "beauty-personal-care"
	TagMotor      Tag = "motor-accessories"
	TagTravel     Tag = "travel-experiences"
)

// Tags lists every tag the classifier can return, in declaration order.
var Tags = []Tag{
	TagMusic, TagBooks, TagMovies, TagTech, TagFashion, TagHomeGarden,
	TagBabyKids, TagSports, TagArt, TagDIY, TagBeauty, TagMotor, TagTravel,
}

type group struct {
	tag Tag
	re  *regexp.Regexp
}

// Slice order is the tie-break: when a category string matches several
// groups, the earliest group wins.
var categoryGroups = []group{
	{TagMusic, regexp.MustCompile(`música|musica|music|vinilo|vinyl|discos|instrumentos`)},
	{TagBooks, regexp.MustCompile(`libro|book|literatura|ebook|lectura|papelería|papeleria`)},
	{TagMovies, regexp.MustCompile(`película|pelicula|cine|movie|film|series|dvd|blu-?ray`)},
	{TagTech, regexp.MustCompile(`electrónica|electronica|electronic|informática|informatica|tecnología|tecnologia|ordenador|computer|móvil|movil|smartphone|tablet|gadget|videojuego|gaming|consola|audio|fotografía|fotografia`)},
	{TagFashion, regexp.MustCompile(`moda|ropa|fashion|clothing|calzado|zapat|shoes|complementos|joyería|joyeria|jewel|reloj|watch|bolsos`)},
	{TagHomeGarden, regexp.MustCompile(`hogar|casa\b|home|jardín|jardin|garden|cocina|kitchen|decoración|decoracion|mueble|furniture|iluminación|iluminacion|menaje`)},
	{TagBabyKids, regexp.MustCompile(`bebé|bebe|baby|infantil|niño|nino|niña|nina|kids|juguete|toys?|puericultura`)},
	{TagSports, regexp.MustCompile(`deporte|sport|fitness|outdoor|montaña|montana|ciclismo|running|camping|pesca|gimnasio`)},
	{TagArt, regexp.MustCompile(`coleccionismo|collectible|arte\b|art\b|antigüedad|antiguedad|figuras|merchandising|láminas|laminas`)},
	{TagDIY, regexp.MustCompile(`bricolaje|diy|herramienta|tools?|ferretería|ferreteria|manualidades`)},
	{TagBeauty, regexp.MustCompile(`belleza|beauty|cosmética|cosmetica|perfum|fragancia|maquillaje|cuidado personal|higiene|skincare`)},
	{TagMotor, regexp.MustCompile(`motor|coche|automóvil|automovil|moto\b|recambio|neumático|neumatico|accesorios de coche`)},
	{TagTravel, regexp.MustCompile(`viajes?\b|travel|experiencias?\b|escapada|hotel|vuelos|entradas`)},
}

// Fallback pass over category + title. Word-boundary anchored; accented
// endings drop the trailing \b because Go's \b is ASCII-only.
var fallbackGroups = []group{
	{TagMusic, regexp.MustCompile(`\b(cd|vinilo|vinyl|álbum|album|música|musica|concierto)\b`)},
	{TagBooks, regexp.MustCompile(`\b(libros?|novela|book|ebook|cómic|comic)\b`)},
	{TagMovies, regexp.MustCompile(`\b(dvd|blu-?ray|película|pelicula|film)\b`)},
	{TagTech, regexp.MustCompile(`\b(auriculares|smartphone|tablet|portátil|portatil|ordenador|consola|videojuego|altavoz|usb|bluetooth)\b`)},
	{TagFashion, regexp.MustCompile(`\b(camiseta|sudadera|zapatillas|vestido|bolso|reloj|pulsera|collar|gorra|calcetines)\b`)},
	{TagHomeGarden, regexp.MustCompile(`\b(taza|lámpara|lampara|manta|cojín|cojin|vela|maceta|sartén|sarten|delantal)\b`)},
	{TagBabyKids, regexp.MustCompile(`\bjuguetes?\b|\bpeluche\b|\binfantil\b|\bbeb[eé]|\bnin[oa]s?\b|\bniñ[oa]s?`)},
	{TagSports, regexp.MustCompile(`\b(bicicleta|fútbol|futbol|yoga|fitness|camping|mochila|senderismo|raqueta)\b`)},
	{TagArt, regexp.MustCompile(`\b(figura|funko|póster|poster|lámina|lamina|maqueta|vinilo decorativo)\b`)},
	{TagDIY, regexp.MustCompile(`\b(taladro|destornillador|herramientas|bricolaje|sierra)\b`)},
	{TagBeauty, regexp.MustCompile(`\b(perfume|colonia|crema|maquillaje|afeitadora|champ[uú])\b|\bchampú`)},
	{TagMotor, regexp.MustCompile(`\b(coche|moto|casco|neumático|neumatico|garaje)\b`)},
	{TagTravel, regexp.MustCompile(`\b(viaje|escapada|hotel|spa|entradas|experiencia)\b`)},
}

// Classify maps raw merchant taxonomy text and a product title onto a tag.
// Returns false when neither tier matches; callers skip such rows instead
// of storing junk categories.
func Classify(rawCategory, title string) (Tag, bool) {
	cat := strings.ToLower(strings.TrimSpace(rawCategory))
	if cat != "" {
		for _, g := range categoryGroups {
			if g.re.MatchString(cat) {
				return g.tag, true
			}
		}
	}

	combined := strings.ToLower(strings.TrimSpace(rawCategory + " " + title))
	if combined == "" {
		return "", false
	}
	for _, g := range fallbackGroups {
		if g.re.MatchString(combined) {
			return g.tag, true
		}
	}
	return "", false
}
